package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PollOption struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MessageID uuid.UUID `gorm:"not null;index" json:"message_id"`
	Position  int       `gorm:"not null" json:"position"`
	Text      string    `gorm:"size:255;not null" json:"text"`

	Votes []PollVote `json:"votes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (o *PollOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// PollVote records one voter on one option. Voting the same option twice is a
// no-op; voting a second option does NOT retract the first (legacy behavior).
type PollVote struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PollOptionID uuid.UUID `gorm:"not null;uniqueIndex:idx_poll_votes_option_user" json:"poll_option_id"`
	UserID       uuid.UUID `gorm:"not null;uniqueIndex:idx_poll_votes_option_user" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (v *PollVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
