package services

import (
	"log"

	"skill-exchange-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	progressSessionCap     = 200
	progressAchievementCap = 100
	leaderboardCap         = 100
)

type ProgressService struct {
	DB *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db}
}

// GetProgress handles GET /api/progress: the caller's session history plus
// earned achievements. Best-effort — partial store failures degrade to the
// empty collection so the progress page still renders.
func (s *ProgressService) GetProgress(c *fiber.Ctx) error {
	userID := CurrentUserID(c)

	sessions := make([]SessionResponse, 0)
	achievements := make([]models.Achievement, 0)
	if userID == "" {
		return c.JSON(fiber.Map{"sessions": sessions, "achievements": achievements})
	}
	db := store(c, s.DB)

	rows, matchByID, err := userSessions(db, userID, progressSessionCap)
	if err != nil {
		log.Printf("⚠️ [PROGRESS] sessions for %s failed: %v", userID, err)
	} else if shaped, err := shapeSessions(db, userID, rows, matchByID); err != nil {
		log.Printf("⚠️ [PROGRESS] session join for %s failed: %v", userID, err)
	} else {
		sessions = shaped
	}

	if err := db.
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Limit(progressAchievementCap).
		Find(&achievements).Error; err != nil {
		log.Printf("⚠️ [PROGRESS] achievements for %s failed: %v", userID, err)
		achievements = make([]models.Achievement, 0)
	}

	return c.JSON(fiber.Map{
		"sessions":     sessions,
		"achievements": achievements,
	})
}

// LeaderboardEntry is one ranked row: points are achievement count times
// the fixed multiplier, nothing configurable.
type LeaderboardEntry struct {
	Rank         int            `json:"rank"`
	User         TeacherSummary `json:"user"`
	Points       int64          `json:"points"`
	Achievements int64          `json:"achievements"`
}

// GetLeaderboard handles GET /api/leaderboard: top 100 users by points,
// computed from real achievement rows. Best-effort — any failure returns an
// empty board rather than an error page.
func (s *ProgressService) GetLeaderboard(c *fiber.Ctx) error {
	entries := make([]LeaderboardEntry, 0)
	db := store(c, s.DB)

	type countRow struct {
		UserID string
		Total  int64
	}
	var counts []countRow
	if err := db.Raw(`
		SELECT user_id, COUNT(*) AS total
		FROM achievements
		GROUP BY user_id
		ORDER BY COUNT(*) DESC
		LIMIT ?
	`, leaderboardCap).Scan(&counts).Error; err != nil {
		log.Printf("⚠️ [LEADERBOARD] aggregate failed: %v", err)
		return c.JSON(entries)
	}

	userIDs := make([]string, 0, len(counts))
	for _, row := range counts {
		userIDs = append(userIDs, row.UserID)
	}
	profiles, err := loadProfiles(db, userIDs)
	if err != nil {
		log.Printf("⚠️ [LEADERBOARD] profile join failed: %v", err)
		profiles = map[string]models.Profile{}
	}

	// Dense ranking: equal point totals share a rank, the next distinct
	// total takes the following one (1, 1, 2 — not 1, 2, 3).
	rank := 0
	prevTotal := int64(-1)
	for _, row := range counts {
		if row.Total != prevTotal {
			rank++
			prevTotal = row.Total
		}
		user := teacherSummary(nil)
		if p, ok := profiles[row.UserID]; ok {
			user = teacherSummary(&p)
		}
		entries = append(entries, LeaderboardEntry{
			Rank:         rank,
			User:         user,
			Points:       row.Total * models.PointsPerAchievement,
			Achievements: row.Total,
		})
	}

	return c.JSON(entries)
}
