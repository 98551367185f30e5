package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"campusmate/internal/model"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(assignment *model.Assignment) error {
	if err := r.db.Create(assignment).Error; err != nil {
		return fmt.Errorf("create assignment failed: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) ListByUserID(userID uint) ([]model.Assignment, error) {
	var assignments []model.Assignment
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("list assignments failed: %w", err)
	}
	return assignments, nil
}

func (r *AssignmentRepository) GetByIDAndUserID(assignmentID, userID uint) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.db.Where("id = ? AND user_id = ?", assignmentID, userID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment failed: %w", err)
	}
	return &assignment, nil
}

func (r *AssignmentRepository) Update(assignment *model.Assignment) error {
	if err := r.db.Save(assignment).Error; err != nil {
		return fmt.Errorf("update assignment failed: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) DeleteByIDAndUserID(assignmentID, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", assignmentID, userID).Delete(&model.Assignment{}).Error; err != nil {
		return fmt.Errorf("delete assignment failed: %w", err)
	}
	return nil
}
