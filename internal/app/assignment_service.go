package app

import (
	"errors"
	"strings"

	"campusmate/internal/model"
	"campusmate/internal/repository"
)

var ErrAssignmentNotFound = errors.New("Assignment not found")

type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
}

func NewAssignmentService(assignmentRepo *repository.AssignmentRepository) *AssignmentService {
	return &AssignmentService{assignmentRepo: assignmentRepo}
}

type CreateAssignmentInput struct {
	UserID uint
	Title  string
	Course string
	Status string
	Score  string
}

type UpdateAssignmentInput struct {
	Title  *string
	Course *string
	Status *string
	Score  *string
}

func (s *AssignmentService) Create(input CreateAssignmentInput) (*model.Assignment, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	course := strings.TrimSpace(input.Course)
	if title == "" || course == "" {
		return nil, ErrInvalidInput
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = "Pending"
	}
	score := strings.TrimSpace(input.Score)
	if score == "" {
		score = "-"
	}

	assignment := &model.Assignment{
		UserID: input.UserID,
		Title:  title,
		Course: course,
		Status: status,
		Score:  score,
	}
	if err := s.assignmentRepo.Create(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) List(userID uint) ([]model.Assignment, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.assignmentRepo.ListByUserID(userID)
}

func (s *AssignmentService) Get(userID, assignmentID uint) (*model.Assignment, error) {
	if userID == 0 || assignmentID == 0 {
		return nil, ErrInvalidInput
	}
	assignment, err := s.assignmentRepo.GetByIDAndUserID(assignmentID, userID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	return assignment, nil
}

func (s *AssignmentService) Update(userID, assignmentID uint, input UpdateAssignmentInput) (*model.Assignment, error) {
	assignment, err := s.Get(userID, assignmentID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		assignment.Title = strings.TrimSpace(*input.Title)
	}
	if input.Course != nil {
		assignment.Course = strings.TrimSpace(*input.Course)
	}
	if input.Status != nil {
		assignment.Status = strings.TrimSpace(*input.Status)
	}
	if input.Score != nil {
		assignment.Score = strings.TrimSpace(*input.Score)
	}

	if err := s.assignmentRepo.Update(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) Delete(userID, assignmentID uint) error {
	if _, err := s.Get(userID, assignmentID); err != nil {
		return err
	}
	return s.assignmentRepo.DeleteByIDAndUserID(assignmentID, userID)
}
