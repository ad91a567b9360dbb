package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/kevmuriithi/skill_swap/database"
	"github.com/kevmuriithi/skill_swap/models"
	"github.com/kevmuriithi/skill_swap/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotParticipant       = errors.New("caller is not a participant in this conversation")
	ErrInvalidPayload       = errors.New("invalid message payload")
	ErrReplyNotFound        = errors.New("replied-to message not found in this conversation")
	ErrOptionNotFound       = errors.New("poll option not found")
)

const (
	DeleteForEveryone = "everyone"
	DeleteForMe       = "me"
)

type AttachmentInput struct {
	URL      string
	FileName string
	FileSize int64
}

type PollInput struct {
	Question string
	Options  []string
}

type LocationInput struct {
	Latitude  float64
	Longitude float64
	Name      string
}

type ContactInput struct {
	Name  string
	Phone string
}

type SendMessageInput struct {
	Content    string
	Kind       string
	Attachment *AttachmentInput
	ReplyToID  *uuid.UUID
	Mentions   []uuid.UUID
	Poll       *PollInput
	Location   *LocationInput
	Contact    *ContactInput
}

type CallInput struct {
	CallType string
	Duration int
	Status   string
}

// IsParticipant reports whether userID belongs to the conversation.
func IsParticipant(conversationID, userID uuid.UUID) (bool, error) {
	var count int64
	err := database.DB.
		Table("conversation_participants").
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func requireParticipant(conversationID, userID uuid.UUID) error {
	var count int64
	err := database.DB.Model(&models.Conversation{}).Where("id = ?", conversationID).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrConversationNotFound
	}
	ok, err := IsParticipant(conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	return nil
}

func validateKindPayload(in *SendMessageInput) error {
	if in.Kind == "" {
		in.Kind = models.MessageKindText
	}

	// A payload whose shape does not match the declared kind is rejected
	// outright rather than silently ignored.
	switch in.Kind {
	case models.MessageKindText:
		if in.Content == "" {
			return fmt.Errorf("%w: text message requires content", ErrInvalidPayload)
		}
		if in.Attachment != nil || in.Poll != nil || in.Location != nil || in.Contact != nil {
			return fmt.Errorf("%w: text message carries no structured payload", ErrInvalidPayload)
		}
	case models.MessageKindImage, models.MessageKindFile:
		if in.Attachment == nil || in.Attachment.URL == "" {
			return fmt.Errorf("%w: %s message requires an attachment", ErrInvalidPayload, in.Kind)
		}
		if in.Poll != nil || in.Location != nil || in.Contact != nil {
			return fmt.Errorf("%w: %s message carries only an attachment", ErrInvalidPayload, in.Kind)
		}
	case models.MessageKindLocation:
		if in.Location == nil {
			return fmt.Errorf("%w: location message requires coordinates", ErrInvalidPayload)
		}
		if in.Attachment != nil || in.Poll != nil || in.Contact != nil {
			return fmt.Errorf("%w: location message carries only coordinates", ErrInvalidPayload)
		}
	case models.MessageKindContact:
		if in.Contact == nil || in.Contact.Name == "" {
			return fmt.Errorf("%w: contact message requires a contact card", ErrInvalidPayload)
		}
		if in.Attachment != nil || in.Poll != nil || in.Location != nil {
			return fmt.Errorf("%w: contact message carries only a contact card", ErrInvalidPayload)
		}
	case models.MessageKindPoll:
		if in.Poll == nil || in.Poll.Question == "" || len(in.Poll.Options) < 2 {
			return fmt.Errorf("%w: poll requires a question and at least two options", ErrInvalidPayload)
		}
		if in.Attachment != nil || in.Location != nil || in.Contact != nil {
			return fmt.Errorf("%w: poll message carries only a poll", ErrInvalidPayload)
		}
	default:
		return fmt.Errorf("%w: unknown message kind %q", ErrInvalidPayload, in.Kind)
	}
	return nil
}

// CreateMessage persists a new message. Delivery is synchronous with
// persistence: there is no sent-but-undelivered state.
func CreateMessage(conversationID, senderID uuid.UUID, in SendMessageInput) (*models.Message, error) {
	if err := requireParticipant(conversationID, senderID); err != nil {
		return nil, err
	}
	if err := validateKindPayload(&in); err != nil {
		return nil, err
	}

	if in.ReplyToID != nil {
		var count int64
		err := database.DB.Model(&models.Message{}).
			Where("id = ? AND conversation_id = ?", *in.ReplyToID, conversationID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrReplyNotFound
		}
	}

	now := time.Now()
	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        in.Content,
		Kind:           in.Kind,
		ReplyToID:      in.ReplyToID,
		IsDelivered:    true,
		DeliveredAt:    &now,
	}
	if message.Content == "" {
		message.Content = utils.PlaceholderContent(in.Kind)
	}

	if in.Attachment != nil {
		message.AttachmentURL = &in.Attachment.URL
		message.AttachmentFileName = &in.Attachment.FileName
		message.AttachmentFileSize = &in.Attachment.FileSize
	}
	if in.Location != nil {
		message.Latitude = &in.Location.Latitude
		message.Longitude = &in.Location.Longitude
		message.LocationName = &in.Location.Name
	}
	if in.Contact != nil {
		message.ContactName = &in.Contact.Name
		message.ContactPhone = &in.Contact.Phone
	}
	if in.Poll != nil {
		message.PollQuestion = &in.Poll.Question
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		if in.Poll != nil {
			for i, text := range in.Poll.Options {
				option := models.PollOption{MessageID: message.ID, Position: i, Text: text}
				if err := tx.Create(&option).Error; err != nil {
					return err
				}
			}
		}
		for i, userID := range in.Mentions {
			mention := models.MessageMention{MessageID: message.ID, UserID: userID, Position: i}
			if err := tx.Create(&mention).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetMessage(message.ID)
}

// LogCall records a call that already happened as a message of kind call. The
// start time is back-computed from the reported duration.
func LogCall(conversationID, senderID uuid.UUID, in CallInput) (*models.Message, error) {
	if err := requireParticipant(conversationID, senderID); err != nil {
		return nil, err
	}

	endedAt := time.Now()
	startedAt := endedAt.Add(-time.Duration(in.Duration) * time.Second)
	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        utils.PlaceholderContent(models.MessageKindCall),
		Kind:           models.MessageKindCall,
		CallType:       &in.CallType,
		CallDuration:   &in.Duration,
		CallStatus:     &in.Status,
		CallStartedAt:  &startedAt,
		CallEndedAt:    &endedAt,
		IsDelivered:    true,
		DeliveredAt:    &endedAt,
	}
	if err := database.DB.Create(&message).Error; err != nil {
		return nil, err
	}
	return GetMessage(message.ID)
}

// GetMessage loads one message with all sub-state, tombstoned or not.
func GetMessage(messageID uuid.UUID) (*models.Message, error) {
	var message models.Message
	err := database.DB.
		Preload("Sender").
		Preload("Reactions").
		Preload("Mentions", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Deletions").
		Preload("PollOptions", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("PollOptions.Votes").
		First(&message, "id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// FetchHistory returns the conversation's messages as seen by viewerID:
// tombstoned messages are hidden from everyone, per-viewer deletions only
// from that viewer. Oldest first.
func FetchHistory(conversationID, viewerID uuid.UUID) ([]models.Message, error) {
	if err := requireParticipant(conversationID, viewerID); err != nil {
		return nil, err
	}

	deletedForViewer := database.DB.
		Table("message_deletions").
		Select("message_id").
		Where("user_id = ?", viewerID)

	var messages []models.Message
	err := database.DB.
		Preload("Sender").
		Preload("Reactions").
		Preload("Mentions", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("PollOptions", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("PollOptions.Votes").
		Where("conversation_id = ?", conversationID).
		Where("is_deleted = ?", false).
		Where("id NOT IN (?)", deletedForViewer).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips is_read on each listed message that was still unread, within
// conversations the caller belongs to. Already-read messages keep their
// original read_at. The read flag is shared, not per viewer. Ids outside the
// caller's conversations are skipped; if nothing in the batch resolves the
// whole call fails with ErrMessageNotFound.
func MarkRead(callerID uuid.UUID, messageIDs []uuid.UUID) ([]models.Message, error) {
	callerConversations := database.DB.
		Table("conversation_participants").
		Select("conversation_id").
		Where("user_id = ?", callerID)

	now := time.Now()
	err := database.DB.Model(&models.Message{}).
		Where("id IN ?", messageIDs).
		Where("is_read = ?", false).
		Where("conversation_id IN (?)", callerConversations).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	err = database.DB.
		Preload("Sender").
		Where("id IN ?", messageIDs).
		Where("conversation_id IN (?)", callerConversations).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, ErrMessageNotFound
	}
	return messages, nil
}

func getParticipantMessage(messageID, callerID uuid.UUID) (*models.Message, error) {
	message, err := GetMessage(messageID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(message.ConversationID, callerID); err != nil {
		return nil, err
	}
	return message, nil
}

// SetStarred sets the star flag to the requested state, idempotently.
func SetStarred(messageID, callerID uuid.UUID, starred bool) (*models.Message, error) {
	message, err := getParticipantMessage(messageID, callerID)
	if err != nil {
		return nil, err
	}
	err = database.DB.Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("is_starred", starred).Error
	if err != nil {
		return nil, err
	}
	return GetMessage(message.ID)
}

// DeleteMessage tombstones the message for everyone, or hides it for the
// caller only. Any participant may use either mode; the row is never removed.
func DeleteMessage(messageID, callerID uuid.UUID, mode string) (*models.Message, error) {
	message, err := getParticipantMessage(messageID, callerID)
	if err != nil {
		return nil, err
	}

	switch mode {
	case DeleteForEveryone:
		now := time.Now()
		err = database.DB.Model(&models.Message{}).
			Where("id = ?", messageID).
			Updates(map[string]interface{}{"is_deleted": true, "deleted_at": now}).Error
	case DeleteForMe:
		deletion := models.MessageDeletion{MessageID: messageID, UserID: callerID}
		err = database.DB.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&deletion).Error
	default:
		return nil, fmt.Errorf("%w: unknown delete mode %q", ErrInvalidPayload, mode)
	}
	if err != nil {
		return nil, err
	}
	return GetMessage(message.ID)
}

// React upserts the caller's single reaction: a second emoji from the same
// participant replaces the first instead of adding an entry.
func React(messageID, callerID uuid.UUID, emoji string) (*models.Message, error) {
	message, err := getParticipantMessage(messageID, callerID)
	if err != nil {
		return nil, err
	}

	reaction := models.Reaction{MessageID: messageID, UserID: callerID, Emoji: emoji}
	err = database.DB.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"emoji", "updated_at"}),
		}).
		Create(&reaction).Error
	if err != nil {
		return nil, err
	}
	return GetMessage(message.ID)
}

// Vote appends the caller to the voter set of the option at optionIndex. It
// never retracts votes the caller holds on other options of the same poll.
func Vote(messageID, callerID uuid.UUID, optionIndex int) (*models.Message, error) {
	message, err := getParticipantMessage(messageID, callerID)
	if err != nil {
		return nil, err
	}
	if message.Kind != models.MessageKindPoll {
		return nil, fmt.Errorf("%w: message is not a poll", ErrInvalidPayload)
	}

	var option models.PollOption
	err = database.DB.
		Where("message_id = ? AND position = ?", messageID, optionIndex).
		First(&option).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}

	vote := models.PollVote{PollOptionID: option.ID, UserID: callerID}
	err = database.DB.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&vote).Error
	if err != nil {
		return nil, err
	}
	return GetMessage(message.ID)
}
