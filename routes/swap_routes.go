package routes

import (
	"github.com/kevmuriithi/skill_swap/handlers"
	"github.com/kevmuriithi/skill_swap/middleware"
	"github.com/gofiber/fiber/v2"
)

func SwapRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected())

	api.Post("/skills", handlers.CreateSkill)
	api.Get("/skills", handlers.ListSkills)

	api.Post("/swaps", handlers.CreateSwap)
	api.Patch("/swaps/:id/accept", handlers.AcceptSwap)
	api.Patch("/swaps/:id/complete", handlers.CompleteSwap)
}
