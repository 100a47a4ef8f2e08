// handlers/conversations.go
package handlers

import (
	"skill-exchange-system/middleware"
	"skill-exchange-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupConversationRoutes(app *fiber.App, matchService *services.MatchService, messageService *services.MessageService) {
	api := app.Group("/api")

	// Reads degrade to empty payloads for anonymous callers; only the
	// message write is hard-gated.
	api.Get("/matches", matchService.ListMatches)
	api.Get("/messages", messageService.GetMessages)
	api.Post("/messages", middleware.RequireUser(), messageService.PostMessage)
}
