package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageDeletion marks a message as deleted for one participant only. The
// message stays visible to everyone else.
type MessageDeletion struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	MessageID uuid.UUID `gorm:"not null;uniqueIndex:idx_message_deletions_message_user" json:"-"`
	UserID    uuid.UUID `gorm:"not null;uniqueIndex:idx_message_deletions_message_user" json:"user_id"`

	CreatedAt time.Time `json:"-"`
}

func (d *MessageDeletion) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
