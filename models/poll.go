package models

import (
	"time"
)

type Poll struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Question    string    `json:"question" gorm:"size:200;not null"`
	Description string    `json:"description"`
	CreatedDate time.Time `json:"created_date" gorm:"not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	CreatedByID uint      `json:"created_by_id" gorm:"not null;index"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`

	// Relationships
	CreatedBy User     `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	Choices   []Choice `json:"choices,omitempty" gorm:"foreignKey:PollID"`
}

// IsVotingOpen reports whether votes may be cast at the given instant.
// Openness is time-dependent, so callers must re-evaluate it per request.
func (p *Poll) IsVotingOpen(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// IsUpcoming reports whether the voting window has not started yet.
func (p *Poll) IsUpcoming(now time.Time) bool {
	return p.StartDate.After(now)
}

// IsClosed reports whether the voting window has already ended.
func (p *Poll) IsClosed(now time.Time) bool {
	return p.EndDate.Before(now)
}
