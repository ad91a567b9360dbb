package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MessageKindText     = "text"
	MessageKindImage    = "image"
	MessageKindFile     = "file"
	MessageKindLocation = "location"
	MessageKindContact  = "contact"
	MessageKindPoll     = "poll"
	MessageKindCall     = "call"
)

const (
	CallStatusCompleted = "completed"
	CallStatusMissed    = "missed"
	CallStatusDeclined  = "declined"
)

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ConversationID uuid.UUID `gorm:"not null;index" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"not null" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Kind           string    `gorm:"size:20;not null;default:'text'" json:"kind"`

	AttachmentURL      *string `gorm:"size:512" json:"attachment_url,omitempty"`
	AttachmentFileName *string `gorm:"size:255" json:"attachment_file_name,omitempty"`
	AttachmentFileSize *int64  `json:"attachment_file_size,omitempty"`

	ReplyToID *uuid.UUID `gorm:"type:uuid" json:"reply_to_id,omitempty"`
	ReplyTo   *Message   `gorm:"foreignkey:ReplyToID" json:"reply_to,omitempty"`

	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LocationName *string  `gorm:"size:255" json:"location_name,omitempty"`

	ContactName  *string `gorm:"size:255" json:"contact_name,omitempty"`
	ContactPhone *string `gorm:"size:50" json:"contact_phone,omitempty"`

	PollQuestion *string      `gorm:"size:500" json:"poll_question,omitempty"`
	PollOptions  []PollOption `json:"poll_options,omitempty"`

	CallType      *string    `gorm:"size:10" json:"call_type,omitempty"`
	CallDuration  *int       `json:"call_duration,omitempty"`
	CallStatus    *string    `gorm:"size:20" json:"call_status,omitempty"`
	CallStartedAt *time.Time `json:"call_started_at,omitempty"`
	CallEndedAt   *time.Time `json:"call_ended_at,omitempty"`

	Reactions []Reaction        `json:"reactions,omitempty"`
	Mentions  []MessageMention  `json:"mentions,omitempty"`
	Deletions []MessageDeletion `json:"deleted_for,omitempty"`

	IsStarred bool `gorm:"default:false" json:"is_starred"`

	IsDelivered bool       `gorm:"default:false" json:"is_delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	IsRead      bool       `gorm:"default:false" json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`

	// Global tombstone: the row stays, nobody sees it again.
	IsDeleted bool       `gorm:"default:false" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	Sender       User         `gorm:"foreignkey:SenderID" json:"sender,omitempty"`
	Conversation Conversation `gorm:"foreignkey:ConversationID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
