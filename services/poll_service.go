package services

import (
	"errors"
	"strings"
	"time"

	"gopolls/models"

	"gorm.io/gorm"
)

const (
	MinChoices = 2
	MaxChoices = 10
)

type PollService struct {
	db *gorm.DB
}

func NewPollService(db *gorm.DB) *PollService {
	return &PollService{db: db}
}

type ChoiceInput struct {
	ID          uint   `json:"id"`
	ChoiceText  string `json:"choice_text"`
	Description string `json:"description"`
	Delete      bool   `json:"delete"`
}

type CreatePollRequest struct {
	Question    string        `json:"question" binding:"required"`
	Description string        `json:"description"`
	EndDate     time.Time     `json:"end_date" binding:"required"`
	Choices     []ChoiceInput `json:"choices" binding:"required"`
}

type UpdatePollRequest struct {
	Question    string        `json:"question"`
	Description string        `json:"description"`
	EndDate     *time.Time    `json:"end_date"`
	Choices     []ChoiceInput `json:"choices"`
}

func (s *PollService) CreatePoll(ownerID uint, req *CreatePollRequest) (*models.Poll, error) {
	now := time.Now()
	if !req.EndDate.After(now) {
		return nil, NewValidationError("End date must be in the future.")
	}

	// Start transaction
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	poll := models.Poll{
		Question:    req.Question,
		Description: req.Description,
		CreatedDate: now,
		StartDate:   now,
		EndDate:     req.EndDate,
		CreatedByID: ownerID,
		IsActive:    true,
	}

	if err := tx.Create(&poll).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Create choices, skipping blank text and rows marked for deletion
	validChoices := 0
	for _, choiceReq := range req.Choices {
		if choiceReq.Delete || strings.TrimSpace(choiceReq.ChoiceText) == "" {
			continue
		}

		choice := models.Choice{
			PollID:      poll.ID,
			ChoiceText:  choiceReq.ChoiceText,
			Description: choiceReq.Description,
		}

		if err := tx.Create(&choice).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		validChoices++
	}

	if validChoices < MinChoices {
		tx.Rollback()
		return nil, NewValidationError("A poll must have at least 2 choices.")
	}
	if validChoices > MaxChoices {
		tx.Rollback()
		return nil, NewValidationError("A poll can have at most 10 choices.")
	}

	// Commit transaction
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetPoll(poll.ID)
}

func (s *PollService) GetPoll(pollID uint) (*models.Poll, error) {
	var poll models.Poll
	err := s.db.Preload("Choices").Preload("CreatedBy").First(&poll, pollID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Poll not found.")
		}
		return nil, err
	}
	return &poll, nil
}

// ListPolls returns active polls matching the search text and status filter.
// Search is a case-insensitive contains over question, description and the
// creator's username. Status is one of all, active, upcoming or closed.
func (s *PollService) ListPolls(search string, status string) ([]models.Poll, error) {
	now := time.Now()

	query := s.db.Model(&models.Poll{}).Where("polls.is_active = ?", true)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.
			Joins("JOIN users ON users.id = polls.created_by_id").
			Where("LOWER(polls.question) LIKE ? OR LOWER(polls.description) LIKE ? OR LOWER(users.username) LIKE ?",
				pattern, pattern, pattern)
	}

	switch status {
	case "active":
		query = query.Where("polls.start_date <= ? AND polls.end_date >= ?", now, now)
	case "upcoming":
		query = query.Where("polls.start_date > ?", now)
	case "closed":
		query = query.Where("polls.end_date < ?", now)
	}

	var polls []models.Poll
	err := query.
		Preload("CreatedBy").
		Order("polls.created_date DESC").
		Find(&polls).Error
	return polls, err
}

// MyPolls returns every poll owned by the user, including inactive ones.
func (s *PollService) MyPolls(ownerID uint) ([]models.Poll, error) {
	var polls []models.Poll
	err := s.db.Where("created_by_id = ?", ownerID).
		Preload("Choices").
		Order("created_date DESC").
		Find(&polls).Error
	return polls, err
}

func (s *PollService) UpdatePoll(ownerID uint, pollID uint, req *UpdatePollRequest) (*models.Poll, error) {
	var poll models.Poll
	if err := s.db.First(&poll, pollID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Poll not found.")
		}
		return nil, err
	}

	if poll.CreatedByID != ownerID {
		return nil, NewAuthorizationError("You do not have permission to edit this poll.")
	}

	now := time.Now()
	if !poll.IsVotingOpen(now) {
		return nil, NewStateError("Cannot edit a closed poll.")
	}

	if req.EndDate != nil && !req.EndDate.After(now) {
		return nil, NewValidationError("End date must be in the future.")
	}

	// Start transaction
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Update poll basic info
	if req.Question != "" {
		poll.Question = req.Question
	}
	if req.Description != "" {
		poll.Description = req.Description
	}
	if req.EndDate != nil {
		poll.EndDate = *req.EndDate
	}

	if err := tx.Save(&poll).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Apply choice mutations
	for _, choiceReq := range req.Choices {
		if choiceReq.Delete {
			if choiceReq.ID == 0 {
				continue
			}
			// The choice must belong to the poll being edited; a foreign
			// ID must never reach the vote cascade below
			var choice models.Choice
			if err := tx.Where("id = ? AND poll_id = ?", choiceReq.ID, poll.ID).First(&choice).Error; err != nil {
				tx.Rollback()
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, NewNotFoundError("Choice not found.")
				}
				return nil, err
			}
			// Deleting a choice cascades to its votes
			if err := tx.Where("choice_id = ?", choice.ID).Delete(&models.Vote{}).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			if err := tx.Delete(&models.Choice{}, choice.ID).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			continue
		}

		if strings.TrimSpace(choiceReq.ChoiceText) == "" {
			continue
		}

		if choiceReq.ID != 0 {
			var choice models.Choice
			if err := tx.Where("id = ? AND poll_id = ?", choiceReq.ID, poll.ID).First(&choice).Error; err != nil {
				tx.Rollback()
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, NewNotFoundError("Choice not found.")
				}
				return nil, err
			}

			choice.ChoiceText = choiceReq.ChoiceText
			choice.Description = choiceReq.Description
			if err := tx.Save(&choice).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		} else {
			choice := models.Choice{
				PollID:      poll.ID,
				ChoiceText:  choiceReq.ChoiceText,
				Description: choiceReq.Description,
			}
			if err := tx.Create(&choice).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	// The choice-count invariant holds after all mutations or none apply
	var choiceCount int64
	if err := tx.Model(&models.Choice{}).Where("poll_id = ?", poll.ID).Count(&choiceCount).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if choiceCount < MinChoices {
		tx.Rollback()
		return nil, NewValidationError("A poll must have at least 2 choices.")
	}
	if choiceCount > MaxChoices {
		tx.Rollback()
		return nil, NewValidationError("A poll can have at most 10 choices.")
	}

	// Commit transaction
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetPoll(poll.ID)
}

// DeletePoll removes the poll along with its choices and their votes in one
// transaction. There is no voting-open check; owners may delete at any time.
func (s *PollService) DeletePoll(ownerID uint, pollID uint) error {
	var poll models.Poll
	if err := s.db.First(&poll, pollID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("Poll not found.")
		}
		return err
	}

	if poll.CreatedByID != ownerID {
		return NewAuthorizationError("You do not have permission to delete this poll.")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("poll_id = ?", pollID).Delete(&models.Vote{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("poll_id = ?", pollID).Delete(&models.Choice{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Poll{}, pollID).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
