package models

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Polls []Poll `json:"polls,omitempty" gorm:"foreignKey:CreatedByID"`
	Votes []Vote `json:"votes,omitempty" gorm:"foreignKey:UserID"`
}
