package models

type Choice struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	PollID      uint   `json:"poll_id" gorm:"not null;index"`
	ChoiceText  string `json:"choice_text" gorm:"size:200;not null"`
	Description string `json:"description"`

	// Relationships
	Poll  Poll   `json:"poll,omitempty" gorm:"foreignKey:PollID"`
	Votes []Vote `json:"votes,omitempty" gorm:"foreignKey:ChoiceID"`
}
