package services

import (
	"log"
	"time"

	"skill-exchange-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const sessionListCap = 200

type SessionService struct {
	DB *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db}
}

// SessionResponse carries the session with its match context embedded.
type SessionResponse struct {
	ID              string         `json:"id"`
	MatchID         string         `json:"match_id"`
	ScheduledAt     time.Time      `json:"scheduled_at"`
	DurationMinutes int            `json:"duration_minutes"`
	Status          string         `json:"status"`
	Rating          *int           `json:"rating,omitempty"`
	Feedback        string         `json:"feedback,omitempty"`
	Skill           fiber.Map      `json:"skill"`
	Counterpart     TeacherSummary `json:"counterpart"`
	Role            string         `json:"role"`
}

// userSessions fetches the caller's sessions through their matches:
// one match query, one IN-filtered session query.
func userSessions(db *gorm.DB, userID string, cap int) ([]models.Session, map[string]models.Match, error) {
	matches, err := userMatches(db, userID)
	if err != nil {
		return nil, nil, err
	}

	matchByID := make(map[string]models.Match, len(matches))
	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchByID[m.ID] = m
		matchIDs = append(matchIDs, m.ID)
	}
	if len(matchIDs) == 0 {
		return []models.Session{}, matchByID, nil
	}

	var sessions []models.Session
	if err := db.
		Where("match_id IN ?", matchIDs).
		Order("scheduled_at DESC").
		Limit(cap).
		Find(&sessions).Error; err != nil {
		return nil, nil, err
	}
	return sessions, matchByID, nil
}

// shapeSessions joins skills and counterpart profiles into session rows.
func shapeSessions(db *gorm.DB, userID string, sessions []models.Session, matchByID map[string]models.Match) ([]SessionResponse, error) {
	skillIDs := make([]string, 0, len(sessions))
	counterpartIDs := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		if m, ok := matchByID[sess.MatchID]; ok {
			skillIDs = append(skillIDs, m.SkillID)
			counterpartIDs = append(counterpartIDs, m.CounterpartID(userID))
		}
	}

	skills, err := loadSkills(db, skillIDs)
	if err != nil {
		return nil, err
	}
	profiles, err := loadProfiles(db, counterpartIDs)
	if err != nil {
		return nil, err
	}

	out := make([]SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		resp := SessionResponse{
			ID:              sess.ID,
			MatchID:         sess.MatchID,
			ScheduledAt:     sess.ScheduledAt,
			DurationMinutes: sess.DurationMinutes,
			Status:          sess.Status,
			Rating:          sess.Rating,
			Feedback:        sess.Feedback,
			Skill:           fiber.Map{"id": "", "title": ""},
			Counterpart:     teacherSummary(nil),
			Role:            models.SkillTypeLearn,
		}
		if m, ok := matchByID[sess.MatchID]; ok {
			if m.TeacherID == userID {
				resp.Role = models.SkillTypeTeach
			}
			resp.Skill = fiber.Map{"id": m.SkillID, "title": ""}
			if sk, ok := skills[m.SkillID]; ok {
				resp.Skill = fiber.Map{"id": sk.ID, "title": sk.Name}
			}
			if p, ok := profiles[m.CounterpartID(userID)]; ok {
				resp.Counterpart = teacherSummary(&p)
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

// ListSessions handles GET /api/sessions. Anonymous → empty list.
func (s *SessionService) ListSessions(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return c.JSON([]SessionResponse{})
	}
	db := store(c, s.DB)

	sessions, matchByID, err := userSessions(db, userID, sessionListCap)
	if err != nil {
		log.Printf("❌ [SESSIONS] fetch for %s failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	shaped, err := shapeSessions(db, userID, sessions, matchByID)
	if err != nil {
		log.Printf("❌ [SESSIONS] join for %s failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(shaped)
}
