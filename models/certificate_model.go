package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Certificate struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID `gorm:"not null" json:"user_id"`
	PartnerID      uuid.UUID `gorm:"not null" json:"partner_id"`
	SwapID         uuid.UUID `gorm:"not null" json:"swap_id"`
	SkillName      string    `gorm:"size:255;not null" json:"skill_name"`
	CompletionDate time.Time `gorm:"not null" json:"completion_date"`
	CertificateURL string    `gorm:"type:text;not null" json:"certificate_url"`

	User    User `gorm:"foreignkey:UserID" json:"-"`
	Partner User `gorm:"foreignkey:PartnerID" json:"-"`
	Swap    Swap `gorm:"foreignkey:SwapID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
