package model

import "time"

// QuizHistory is one finished quiz attempt. Percentage is computed once at
// save time so historic rows keep the score even if the formula changes.
type QuizHistory struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Topic          string    `gorm:"size:256;not null" json:"topic"`
	Score          int       `gorm:"not null" json:"score"`
	TotalQuestions int       `gorm:"not null" json:"total_questions"`
	Percentage     int       `gorm:"not null" json:"percentage"`
	CreatedAt      time.Time `json:"createdAt"`
}
