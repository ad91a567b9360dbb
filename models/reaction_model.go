package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction holds at most one emoji per user per message; repeated reactions
// from the same user replace the previous emoji.
type Reaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MessageID uuid.UUID `gorm:"not null;uniqueIndex:idx_reactions_message_user" json:"message_id"`
	UserID    uuid.UUID `gorm:"not null;uniqueIndex:idx_reactions_message_user" json:"user_id"`
	Emoji     string    `gorm:"size:16;not null" json:"emoji"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
