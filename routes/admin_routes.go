package routes

import (
	"github.com/kevmuriithi/skill_swap/handlers"
	"github.com/kevmuriithi/skill_swap/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/v1/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/messages/:id", handlers.GetMessageRecord)
}
