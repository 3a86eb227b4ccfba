package services

import (
	"errors"
	"strings"
	"time"

	"gopolls/models"

	"gorm.io/gorm"
)

type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

type ChoiceResult struct {
	ID          uint    `json:"id"`
	Text        string  `json:"text"`
	Description string  `json:"description"`
	VoteCount   int64   `json:"vote_count"`
	Percentage  float64 `json:"percentage"`
}

type PollResults struct {
	PollID       uint           `json:"poll_id"`
	Question     string         `json:"question"`
	TotalVotes   int64          `json:"total_votes"`
	Choices      []ChoiceResult `json:"choices"`
	IsVotingOpen bool           `json:"is_voting_open"`
}

// CastVote records the user's selection for one of the poll's choices.
//
// The existing-vote lookup below is only a friendlier answer for the common
// case. Two requests from the same user can both pass it before either
// inserts; the unique index on (user_id, poll_id) is what actually prevents
// a second row, and a violation there is reported as a retryable conflict.
func (s *VoteService) CastVote(userID uint, pollID uint, choiceID uint) (*models.Vote, error) {
	var poll models.Poll
	if err := s.db.First(&poll, pollID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Poll not found.")
		}
		return nil, err
	}

	now := time.Now()
	if !poll.IsVotingOpen(now) {
		return nil, NewStateError("Voting for this poll is closed.")
	}

	var existing models.Vote
	err := s.db.Where("user_id = ? AND poll_id = ?", userID, pollID).First(&existing).Error
	if err == nil {
		return nil, NewStateError("You have already voted in this poll.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var choice models.Choice
	if err := s.db.Where("id = ? AND poll_id = ?", choiceID, pollID).First(&choice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("You must select a valid choice.")
		}
		return nil, err
	}

	vote := models.Vote{
		UserID:   userID,
		PollID:   poll.ID,
		ChoiceID: choice.ID,
		VotedAt:  now,
	}

	if err := s.db.Create(&vote).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, NewConflictError("An error occurred while recording your vote. Please try again.")
		}
		return nil, err
	}

	return &vote, nil
}

// UserVote returns the user's vote in the poll, or nil if they have not voted.
func (s *VoteService) UserVote(userID uint, pollID uint) (*models.Vote, error) {
	var vote models.Vote
	err := s.db.Where("user_id = ? AND poll_id = ?", userID, pollID).
		Preload("Choice").
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// Results computes per-choice counts and percentages for the poll. Nothing
// is cached; every call reflects the store at that instant.
func (s *VoteService) Results(pollID uint) (*PollResults, error) {
	var poll models.Poll
	err := s.db.Preload("Choices").First(&poll, pollID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Poll not found.")
		}
		return nil, err
	}

	type choiceCount struct {
		ChoiceID uint
		Count    int64
	}
	var counts []choiceCount
	err = s.db.Model(&models.Vote{}).
		Select("choice_id, COUNT(*) AS count").
		Where("poll_id = ?", pollID).
		Group("choice_id").
		Find(&counts).Error
	if err != nil {
		return nil, err
	}

	countByChoice := make(map[uint]int64, len(counts))
	var total int64
	for _, c := range counts {
		countByChoice[c.ChoiceID] = c.Count
		total += c.Count
	}

	results := &PollResults{
		PollID:       poll.ID,
		Question:     poll.Question,
		TotalVotes:   total,
		Choices:      make([]ChoiceResult, 0, len(poll.Choices)),
		IsVotingOpen: poll.IsVotingOpen(time.Now()),
	}

	for _, choice := range poll.Choices {
		count := countByChoice[choice.ID]
		percentage := 0.0
		if total > 0 {
			percentage = float64(count) / float64(total) * 100
		}
		results.Choices = append(results.Choices, ChoiceResult{
			ID:          choice.ID,
			Text:        choice.ChoiceText,
			Description: choice.Description,
			VoteCount:   count,
			Percentage:  percentage,
		})
	}

	return results, nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallbacks for drivers that do not translate constraint errors
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
