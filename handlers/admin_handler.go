package handlers

import (
	"github.com/kevmuriithi/skill_swap/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetMessageRecord is the moderation view of a single message. Unlike the
// history endpoint it bypasses participant scoping and per-viewer deletions,
// so tombstoned messages come back with is_deleted still set.
func GetMessageRecord(c *fiber.Ctx) error {
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	message, err := services.GetMessage(messageID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(message)
}
