package models

import (
	"time"
)

// Vote records a single user's selection within a poll. PollID is copied
// from the choice at insert time so the store can enforce one vote per
// (user, poll) with a composite unique index, which is what actually
// prevents double voting under concurrent requests.
type Vote struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_votes_user_poll"`
	PollID   uint      `json:"poll_id" gorm:"not null;uniqueIndex:idx_votes_user_poll"`
	ChoiceID uint      `json:"choice_id" gorm:"not null;index"`
	VotedAt  time.Time `json:"voted_at" gorm:"not null"`

	// Relationships
	User   User   `json:"user,omitempty"`
	Choice Choice `json:"choice,omitempty"`
}
