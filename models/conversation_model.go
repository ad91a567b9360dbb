package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is the messaging thread for one swap negotiation. Exactly two
// participants for the lifetime of the swap.
type Conversation struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SwapID uuid.UUID `gorm:"not null;unique" json:"swap_id"`

	Participants []*User   `gorm:"many2many:conversation_participants;" json:"participants,omitempty"`
	Messages     []Message `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
