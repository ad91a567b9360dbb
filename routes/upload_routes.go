package routes

import (
	"github.com/kevmuriithi/skill_swap/handlers"
	"github.com/kevmuriithi/skill_swap/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected())

	api.Get("/uploads/signature", handlers.GenerateUploadSignature)
}
