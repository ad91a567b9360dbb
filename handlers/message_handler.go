package handlers

import (
	"errors"
	"log"

	"github.com/kevmuriithi/skill_swap/middleware"
	"github.com/kevmuriithi/skill_swap/services"
	"github.com/kevmuriithi/skill_swap/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MessageHandler owns the message lifecycle surface. Writes that change what
// realtime viewers should see are published to the conversation's room after
// they commit, so clients tracking the room stay in sync without a second
// fetch.
type MessageHandler struct {
	Hub *websocket.Hub
}

func NewMessageHandler(hub *websocket.Hub) *MessageHandler {
	return &MessageHandler{Hub: hub}
}

type AttachmentRequest struct {
	URL      string `json:"url" validate:"required,url"`
	FileName string `json:"file_name" validate:"required"`
	FileSize int64  `json:"file_size" validate:"gte=0"`
}

type PollRequest struct {
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options" validate:"required,min=2,dive,required"`
}

type LocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required"`
	Longitude float64 `json:"longitude" validate:"required"`
	Name      string  `json:"name"`
}

type ContactRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

type SendMessageRequest struct {
	Content    string             `json:"content"`
	Kind       string             `json:"kind" validate:"omitempty,oneof=text image file location contact poll"`
	Attachment *AttachmentRequest `json:"attachment"`
	ReplyToID  *string            `json:"reply_to_id" validate:"omitempty,uuid"`
	Mentions   []string           `json:"mentions" validate:"omitempty,dive,uuid"`
	Poll       *PollRequest       `json:"poll"`
	Location   *LocationRequest   `json:"location"`
	Contact    *ContactRequest    `json:"contact"`
}

func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrReplyNotFound),
		errors.Is(err, services.ErrOptionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidPayload):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("🔥 Message operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
	}
}

// SendMessage persists a new message and publishes it to the room.
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	input := services.SendMessageInput{
		Content: req.Content,
		Kind:    req.Kind,
	}
	if req.Attachment != nil {
		input.Attachment = &services.AttachmentInput{
			URL:      req.Attachment.URL,
			FileName: req.Attachment.FileName,
			FileSize: req.Attachment.FileSize,
		}
	}
	if req.ReplyToID != nil {
		replyID, err := uuid.Parse(*req.ReplyToID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reply_to_id"})
		}
		input.ReplyToID = &replyID
	}
	for _, raw := range req.Mentions {
		mentionID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mention ID"})
		}
		input.Mentions = append(input.Mentions, mentionID)
	}
	if req.Poll != nil {
		input.Poll = &services.PollInput{Question: req.Poll.Question, Options: req.Poll.Options}
	}
	if req.Location != nil {
		input.Location = &services.LocationInput{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
			Name:      req.Location.Name,
		}
	}
	if req.Contact != nil {
		input.Contact = &services.ContactInput{Name: req.Contact.Name, Phone: req.Contact.Phone}
	}

	message, err := services.CreateMessage(conversationID, userID, input)
	if err != nil {
		return serviceError(c, err)
	}

	h.Hub.Publish(conversationID, websocket.Event{Type: "receive_message", Payload: message})

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetMessages returns the conversation history as the caller sees it.
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	messages, err := services.FetchHistory(conversationID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(messages)
}

type MarkReadRequest struct {
	MessageIDs []string `json:"message_ids" validate:"required,min=1,dive,uuid"`
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req MarkReadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ids := make([]uuid.UUID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
		}
		ids = append(ids, id)
	}

	messages, err := services.MarkRead(userID, ids)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(messages)
}

type StarRequest struct {
	Starred *bool `json:"starred" validate:"required"`
}

func (h *MessageHandler) StarMessage(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	var req StarRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := services.SetStarred(messageID, userID, *req.Starred)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(message)
}

func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	mode := c.Query("mode", services.DeleteForMe)

	message, err := services.DeleteMessage(messageID, userID, mode)
	if err != nil {
		return serviceError(c, err)
	}

	if mode == services.DeleteForEveryone {
		h.Hub.Publish(message.ConversationID, websocket.Event{Type: "message_deleted", Payload: fiber.Map{
			"message_id":      message.ID,
			"conversation_id": message.ConversationID,
		}})
	}

	return c.JSON(message)
}

type ReactRequest struct {
	Emoji string `json:"emoji" validate:"required,max=16"`
}

func (h *MessageHandler) ReactToMessage(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	var req ReactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := services.React(messageID, userID, req.Emoji)
	if err != nil {
		return serviceError(c, err)
	}

	h.Hub.Publish(message.ConversationID, websocket.Event{Type: "message_updated", Payload: message})

	return c.JSON(message)
}

type VoteRequest struct {
	OptionIndex *int `json:"option_index" validate:"required,gte=0"`
}

func (h *MessageHandler) VoteOnPoll(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	var req VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := services.Vote(messageID, userID, *req.OptionIndex)
	if err != nil {
		return serviceError(c, err)
	}

	h.Hub.Publish(message.ConversationID, websocket.Event{Type: "message_updated", Payload: message})

	return c.JSON(message)
}

type LogCallRequest struct {
	CallType string `json:"call_type" validate:"required,oneof=audio video"`
	Duration int    `json:"duration" validate:"gte=0"`
	Status   string `json:"status" validate:"required,oneof=completed missed declined"`
}

// LogCall records a call that happened elsewhere as a message of kind call.
func (h *MessageHandler) LogCall(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var req LogCallRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message, err := services.LogCall(conversationID, userID, services.CallInput{
		CallType: req.CallType,
		Duration: req.Duration,
		Status:   req.Status,
	})
	if err != nil {
		return serviceError(c, err)
	}

	h.Hub.Publish(conversationID, websocket.Event{Type: "receive_message", Payload: message})

	return c.Status(fiber.StatusCreated).JSON(message)
}
