package model

import "time"

type Assignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	Course    string    `gorm:"size:128;not null" json:"course"`
	Status    string    `gorm:"size:32;not null;default:'Pending'" json:"status"` // Pending | Completed
	Score     string    `gorm:"size:16;not null;default:'-'" json:"score"`        // e.g. "95%" or "-"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
