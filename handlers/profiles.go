// handlers/profiles.go
package handlers

import (
	"skill-exchange-system/middleware"
	"skill-exchange-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, profileService *services.ProfileService) {
	api := app.Group("/api")

	api.Get("/profile/:id", profileService.GetProfile)
	api.Post("/profile/avatar", middleware.RequireUser(), profileService.UploadAvatar)
}
