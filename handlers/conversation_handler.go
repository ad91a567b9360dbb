package handlers

import (
	"github.com/kevmuriithi/skill_swap/database"
	"github.com/kevmuriithi/skill_swap/middleware"
	"github.com/kevmuriithi/skill_swap/models"
	"github.com/gofiber/fiber/v2"
)

func GetUserConversations(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var user models.User
	if err := database.DB.
		Preload("Conversations.Participants").
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(user.Conversations)
}
