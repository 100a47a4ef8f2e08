package services

import (
	"log"
	"time"

	"skill-exchange-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const matchListCap = 100

type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

// MatchResponse embeds the counterpart profile and the skill inline so the
// client renders a match card without further lookups.
type MatchResponse struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Role        string         `json:"role"` // teach | learn, from the caller's perspective
	Skill       fiber.Map      `json:"skill"`
	Counterpart TeacherSummary `json:"counterpart"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// userMatches fetches the caller's matches, newest-updated first, capped.
func userMatches(db *gorm.DB, userID string) ([]models.Match, error) {
	var rows []models.Match
	err := db.
		Where("teacher_id = ? OR learner_id = ?", userID, userID).
		Order("updated_at DESC").
		Limit(matchListCap).
		Find(&rows).Error
	return rows, err
}

// shapeMatches joins counterpart profiles and skills (one IN query each)
// into denormalized match rows.
func shapeMatches(db *gorm.DB, userID string, rows []models.Match) ([]MatchResponse, error) {
	counterpartIDs := make([]string, 0, len(rows))
	skillIDs := make([]string, 0, len(rows))
	for _, m := range rows {
		counterpartIDs = append(counterpartIDs, m.CounterpartID(userID))
		skillIDs = append(skillIDs, m.SkillID)
	}

	profiles, err := loadProfiles(db, counterpartIDs)
	if err != nil {
		return nil, err
	}
	skills, err := loadSkills(db, skillIDs)
	if err != nil {
		return nil, err
	}

	out := make([]MatchResponse, 0, len(rows))
	for _, m := range rows {
		role := models.SkillTypeLearn
		if m.TeacherID == userID {
			role = models.SkillTypeTeach
		}

		counterpart := teacherSummary(nil)
		if p, ok := profiles[m.CounterpartID(userID)]; ok {
			counterpart = teacherSummary(&p)
		}

		skillObj := fiber.Map{"id": m.SkillID, "title": "", "category": ""}
		if sk, ok := skills[m.SkillID]; ok {
			skillObj = fiber.Map{"id": sk.ID, "title": sk.Name, "category": sk.Category}
		}

		out = append(out, MatchResponse{
			ID:          m.ID,
			Status:      m.Status,
			Role:        role,
			Skill:       skillObj,
			Counterpart: counterpart,
			CreatedAt:   m.CreatedAt,
			UpdatedAt:   m.UpdatedAt,
		})
	}
	return out, nil
}

// ListMatches handles GET /api/matches. Anonymous callers get an empty list,
// not an error.
func (s *MatchService) ListMatches(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return c.JSON([]MatchResponse{})
	}
	db := store(c, s.DB)

	rows, err := userMatches(db, userID)
	if err != nil {
		log.Printf("❌ [MATCHES] fetch for %s failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	shaped, err := shapeMatches(db, userID, rows)
	if err != nil {
		log.Printf("❌ [MATCHES] join for %s failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(shaped)
}
