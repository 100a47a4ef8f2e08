// handlers/skills.go
package handlers

import (
	"skill-exchange-system/middleware"
	"skill-exchange-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSkillRoutes(app *fiber.App, skillService *services.SkillService, searchService *services.SearchService) {
	api := app.Group("/api")

	// 🔓 Public reads
	api.Get("/skills", skillService.ListSkills)
	api.Get("/skills/:id", skillService.GetSkillByID)
	api.Get("/skills/:id/reviews", skillService.GetSkillReviews)
	api.Get("/search", searchService.Search)

	// 🔐 Writes require a principal
	api.Post("/skills", middleware.RequireUser(), skillService.CreateSkill)
}
