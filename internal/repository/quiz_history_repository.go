package repository

import (
	"fmt"

	"gorm.io/gorm"

	"campusmate/internal/model"
)

type QuizHistoryRepository struct {
	db *gorm.DB
}

func NewQuizHistoryRepository(db *gorm.DB) *QuizHistoryRepository {
	return &QuizHistoryRepository{db: db}
}

func (r *QuizHistoryRepository) Create(entry *model.QuizHistory) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create quiz history failed: %w", err)
	}
	return nil
}

func (r *QuizHistoryRepository) ListByUserID(userID uint) ([]model.QuizHistory, error) {
	var history []model.QuizHistory
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&history).Error; err != nil {
		return nil, fmt.Errorf("list quiz history failed: %w", err)
	}
	return history, nil
}
