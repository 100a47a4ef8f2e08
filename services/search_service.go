package services

import (
	"log"
	"strings"
	"sync"

	"skill-exchange-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const searchLimitMax = 50

type SearchService struct {
	DB *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{DB: db}
}

// ProfileSummary is the denormalized profile row returned by search.
type ProfileSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Location string `json:"location"`
	Bio      string `json:"bio,omitempty"`
}

func profileSummary(p *models.Profile) ProfileSummary {
	out := ProfileSummary{
		Name:     p.Name(),
		Avatar:   p.Avatar(),
		Location: p.Place(),
	}
	if p != nil {
		out.ID = p.ID
		out.Bio = p.Bio
	}
	return out
}

// Search handles GET /api/search. Skill and profile lookups have no data
// dependency, so when both are requested they run concurrently and join
// before responding. An empty query never touches the store.
func (s *SearchService) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	searchType := c.Query("type")
	limit := ClampLimit(c.Query("limit"), 20, searchLimitMax)
	db := store(c, s.DB)

	skills := make([]SkillResponse, 0)
	profiles := make([]ProfileSummary, 0)

	if q == "" {
		return c.JSON(fiber.Map{"skills": skills, "profiles": profiles})
	}

	wantSkills := searchType == "" || searchType == "skills"
	wantProfiles := searchType == "" || searchType == "profiles"

	var wg sync.WaitGroup
	var skillErr, profileErr error

	if wantSkills {
		wg.Add(1)
		go func() {
			defer wg.Done()
			skills, skillErr = searchSkills(db, q, limit)
		}()
	}
	if wantProfiles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profiles, profileErr = searchProfiles(db, q, limit)
		}()
	}
	wg.Wait()

	if skillErr != nil || profileErr != nil {
		log.Printf("❌ [SEARCH] q=%q failed: skills=%v profiles=%v", q, skillErr, profileErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Search failed"})
	}

	return c.JSON(fiber.Map{"skills": skills, "profiles": profiles})
}

func searchSkills(db *gorm.DB, q string, limit int) ([]SkillResponse, error) {
	pattern := likePattern(q)

	var rows []models.Skill
	if err := db.
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	shaped, err := shapeSkills(db, rows)
	if err != nil {
		return nil, err
	}
	RankSkills(shaped)
	return shaped, nil
}

func searchProfiles(db *gorm.DB, q string, limit int) ([]ProfileSummary, error) {
	pattern := likePattern(q)

	var rows []models.Profile
	if err := db.
		Where("LOWER(display_name) LIKE ? OR LOWER(bio) LIKE ?", pattern, pattern).
		Order("display_name ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ProfileSummary, 0, len(rows))
	for _, p := range rows {
		out = append(out, profileSummary(&p))
	}
	return out, nil
}
