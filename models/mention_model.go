package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageMention struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	MessageID uuid.UUID `gorm:"not null;index" json:"-"`
	UserID    uuid.UUID `gorm:"not null" json:"user_id"`
	Position  int       `gorm:"not null" json:"position"`

	CreatedAt time.Time `json:"-"`
}

func (m *MessageMention) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
