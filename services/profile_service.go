package services

import (
	"errors"
	"log"
	"path/filepath"

	"skill-exchange-system/models"
	"skill-exchange-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const avatarSizeMax = 5 * 1024 * 1024 // 5MB

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// GetProfile handles GET /api/profile/:id — the profile plus its teaching
// and learning skills and aggregate stats, denormalized for the profile page.
func (s *ProfileService) GetProfile(c *fiber.Ctx) error {
	id := c.Params("id")
	db := store(c, s.DB)

	var profile models.Profile
	if err := db.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "profile not found"})
		}
		log.Printf("❌ [PROFILE] fetch %s failed: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	var links []models.UserSkill
	if err := db.Where("user_id = ?", id).Order("created_at ASC").Find(&links).Error; err != nil {
		log.Printf("❌ [PROFILE] skill links for %s failed: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	skillIDs := make([]string, 0, len(links))
	for _, link := range links {
		skillIDs = append(skillIDs, link.SkillID)
	}
	skills, err := loadSkills(db, skillIDs)
	if err != nil {
		log.Printf("❌ [PROFILE] skill join for %s failed: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	stats, err := loadSkillStats(db, skillIDs)
	if err != nil {
		log.Printf("❌ [PROFILE] stats join for %s failed: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	teaching := make([]fiber.Map, 0)
	learning := make([]fiber.Map, 0)
	var sessionsTaught, ratingCount int64
	var ratingSum float64

	for _, link := range links {
		sk, ok := skills[link.SkillID]
		if !ok {
			continue
		}
		entry := fiber.Map{
			"id":          sk.ID,
			"title":       sk.Name,
			"slug":        sk.Slug,
			"category":    sk.Category,
			"proficiency": link.Proficiency,
			"rate":        link.Rate,
		}
		switch models.NormalizeSkillType(link.SkillType) {
		case models.SkillTypeTeach:
			if st, ok := stats[sk.ID]; ok {
				entry["rating"] = st.AverageRating()
				entry["students"] = st.StudentsCount
				sessionsTaught += st.SessionsCount
				ratingSum += st.RatingSum
				ratingCount += st.RatingCount
			} else {
				entry["rating"] = 0.0
				entry["students"] = int64(0)
			}
			teaching = append(teaching, entry)
		case models.SkillTypeLearn:
			learning = append(learning, entry)
		}
	}

	var achievementCount int64
	if err := db.Model(&models.Achievement{}).Where("user_id = ?", id).Count(&achievementCount).Error; err != nil {
		log.Printf("⚠️ [PROFILE] achievement count for %s failed: %v", id, err)
		achievementCount = 0
	}

	averageRating := 0.0
	if ratingCount > 0 {
		averageRating = ratingSum / float64(ratingCount)
	}

	return c.JSON(fiber.Map{
		"profile": fiber.Map{
			"id":         profile.ID,
			"name":       profile.Name(),
			"avatar":     profile.Avatar(),
			"location":   profile.Place(),
			"bio":        profile.Bio,
			"created_at": profile.CreatedAt,
		},
		"teaching": teaching,
		"learning": learning,
		"stats": fiber.Map{
			"sessions_taught": sessionsTaught,
			"average_rating":  averageRating,
			"achievements":    achievementCount,
			"points":          achievementCount * models.PointsPerAchievement,
		},
	})
}

// UploadAvatar handles POST /api/profile/avatar: stores the image in the
// public bucket and points the caller's profile at the new URL.
func (s *ProfileService) UploadAvatar(c *fiber.Ctx) error {
	userID := CurrentUserID(c)

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if avatarFile.Size > avatarSizeMax {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 5MB)"})
	}

	ext := filepath.Ext(avatarFile.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := "avatars/" + uuid.NewString() + ext

	url, err := utils.UploadPublicFile(avatarFile, key)
	if err != nil {
		log.Printf("❌ [PROFILE] avatar upload for %s failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar"})
	}

	if err := store(c, s.DB).Model(&models.Profile{}).
		Where("id = ?", userID).
		Update("avatar_url", url).Error; err != nil {
		log.Printf("❌ [PROFILE] avatar update for %s failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"avatar_url": url})
}
