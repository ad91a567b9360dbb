package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusCompleted = "completed"
	SwapStatusDeclined  = "declined"
)

type Swap struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RequesterID    uuid.UUID `gorm:"not null" json:"requester_id"`
	ProviderID     uuid.UUID `gorm:"not null" json:"provider_id"`
	OfferedSkillID uuid.UUID `gorm:"not null" json:"offered_skill_id"`
	WantedSkillID  uuid.UUID `gorm:"not null" json:"wanted_skill_id"`
	Status         string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Message        *string   `gorm:"type:text" json:"message"`

	Requester    User  `gorm:"foreignkey:RequesterID" json:"requester,omitempty"`
	Provider     User  `gorm:"foreignkey:ProviderID" json:"provider,omitempty"`
	OfferedSkill Skill `gorm:"foreignkey:OfferedSkillID" json:"offered_skill,omitempty"`
	WantedSkill  Skill `gorm:"foreignkey:WantedSkillID" json:"wanted_skill,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Swap) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
