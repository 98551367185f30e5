package model

import "time"

type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:128;not null" json:"name"`
	Email             string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash      string    `gorm:"size:255;not null" json:"-"`
	Major             string    `gorm:"size:128;not null;default:'Computer Science'" json:"major"`
	Group             string    `gorm:"column:group_name;size:64;not null;default:'CS-101'" json:"group"`
	GPA               float64   `gorm:"not null;default:3.5" json:"gpa"`
	StudyGoal         string    `gorm:"size:32;not null;default:'exam'" json:"study_goal"`
	StudyHoursPerWeek int       `gorm:"not null;default:10" json:"study_hours_per_week"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"-"`
}
