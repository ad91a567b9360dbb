package routes

import (
	"github.com/kevmuriithi/skill_swap/handlers"
	"github.com/kevmuriithi/skill_swap/middleware"
	ws "github.com/kevmuriithi/skill_swap/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(app *fiber.App, hub *ws.Hub) {
	messageHandler := handlers.NewMessageHandler(hub)

	api := app.Group("/api/v1")

	conversations := api.Group("/conversations", middleware.Protected())
	conversations.Get("", handlers.GetUserConversations)
	conversations.Get("/:conversationId/messages", messageHandler.GetMessages)
	conversations.Post("/:conversationId/messages", messageHandler.SendMessage)
	conversations.Post("/:conversationId/calls", messageHandler.LogCall)

	messages := api.Group("/messages", middleware.Protected())
	messages.Post("/read", messageHandler.MarkRead)
	messages.Patch("/:id/star", messageHandler.StarMessage)
	messages.Delete("/:id", messageHandler.DeleteMessage)
	messages.Post("/:id/reactions", messageHandler.ReactToMessage)
	messages.Post("/:id/votes", messageHandler.VoteOnPoll)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(func(c *websocket.Conn) {
		handlers.ServeWs(hub, c)
	}))
}
