// handlers/progress.go
package handlers

import (
	"skill-exchange-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App, sessionService *services.SessionService, progressService *services.ProgressService) {
	api := app.Group("/api")

	api.Get("/sessions", sessionService.ListSessions)
	api.Get("/progress", progressService.GetProgress)
	api.Get("/leaderboard", progressService.GetLeaderboard)
}
