package handlers

import (
	"fmt"

	"github.com/kevmuriithi/skill_swap/database"
	"github.com/kevmuriithi/skill_swap/middleware"
	"github.com/kevmuriithi/skill_swap/models"
	"github.com/kevmuriithi/skill_swap/notifications"
	"github.com/kevmuriithi/skill_swap/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateSkillRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func CreateSkill(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateSkillRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	skill := models.Skill{
		UserID:      userID,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	}
	if err := database.DB.Create(&skill).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create skill"})
	}
	return c.Status(fiber.StatusCreated).JSON(skill)
}

func ListSkills(c *fiber.Ctx) error {
	var skills []models.Skill
	query := database.DB.Order("created_at desc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&skills).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch skills"})
	}
	return c.JSON(skills)
}

type CreateSwapRequest struct {
	ProviderID     string  `json:"provider_id" validate:"required,uuid"`
	OfferedSkillID string  `json:"offered_skill_id" validate:"required,uuid"`
	WantedSkillID  string  `json:"wanted_skill_id" validate:"required,uuid"`
	Message        *string `json:"message"`
}

func CreateSwap(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	providerID, _ := uuid.Parse(req.ProviderID)
	offeredSkillID, _ := uuid.Parse(req.OfferedSkillID)
	wantedSkillID, _ := uuid.Parse(req.WantedSkillID)

	var provider models.User
	if err := database.DB.First(&provider, "id = ?", providerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider not found"})
	}

	swap := models.Swap{
		RequesterID:    userID,
		ProviderID:     providerID,
		OfferedSkillID: offeredSkillID,
		WantedSkillID:  wantedSkillID,
		Status:         models.SwapStatusPending,
		Message:        req.Message,
	}
	if err := database.DB.Create(&swap).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create swap"})
	}
	return c.Status(fiber.StatusCreated).JSON(swap)
}

// AcceptSwap moves a pending swap to accepted and opens its conversation.
// This is where the conversation directory gains an entry: the two swap
// parties become the conversation's participants.
func AcceptSwap(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	swapID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid swap ID"})
	}

	var swap models.Swap
	if err := database.DB.Preload("Requester").Preload("Provider").First(&swap, "id = ?", swapID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Swap not found"})
	}
	if swap.ProviderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the provider can accept a swap"})
	}
	if swap.Status != models.SwapStatusPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Swap is not pending"})
	}

	var conversation models.Conversation
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&swap).Update("status", models.SwapStatusAccepted).Error; err != nil {
			return err
		}

		if err := tx.Where("swap_id = ?", swap.ID).First(&conversation).Error; err == nil {
			return nil
		}

		conversation = models.Conversation{
			SwapID:       swap.ID,
			Participants: []*models.User{&swap.Requester, &swap.Provider},
		}
		return tx.Create(&conversation).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to accept swap"})
	}

	go notifications.SendEmail(
		swap.Requester.FullName,
		swap.Requester.Email,
		"Your swap was accepted!",
		fmt.Sprintf("<h1>Swap accepted</h1><p>%s accepted your swap request. You can now chat about the details.</p>", swap.Provider.FullName),
	)

	return c.JSON(fiber.Map{"swap": swap, "conversation": conversation})
}

// CompleteSwap closes out an accepted swap and kicks off certificates in the
// background.
func CompleteSwap(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	swapID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid swap ID"})
	}

	var swap models.Swap
	if err := database.DB.
		Preload("Requester").Preload("Provider").
		Preload("OfferedSkill").Preload("WantedSkill").
		First(&swap, "id = ?", swapID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Swap not found"})
	}
	if swap.RequesterID != userID && swap.ProviderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your swap"})
	}
	if swap.Status != models.SwapStatusAccepted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Swap is not accepted"})
	}

	if err := database.DB.Model(&swap).Update("status", models.SwapStatusCompleted).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete swap"})
	}

	go services.GenerateSwapCertificates(swap)

	return c.JSON(swap)
}
