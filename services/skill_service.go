package services

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"skill-exchange-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const (
	skillPageLimitMax     = 50
	skillPageLimitDefault = 20
)

type SkillService struct {
	DB *gorm.DB
}

func NewSkillService(db *gorm.DB) *SkillService {
	return &SkillService{DB: db}
}

// TeacherSummary is the embedded teacher object on denormalized skill rows.
// Missing joins degrade to the documented placeholders, never to null.
type TeacherSummary struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Location string `json:"location"`
}

// SkillResponse is the client-facing skill shape: storage "name" is exposed
// as "title", with teacher and stats embedded inline.
type SkillResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Rating      float64        `json:"rating"`
	Students    int64          `json:"students"`
	Sessions    int64          `json:"sessions"`
	Teacher     TeacherSummary `json:"teacher"`
	CreatedAt   time.Time      `json:"created_at"`
}

func teacherSummary(p *models.Profile) TeacherSummary {
	out := TeacherSummary{
		Name:     p.Name(),
		Avatar:   p.Avatar(),
		Location: p.Place(),
	}
	if p != nil {
		out.ID = p.ID
	}
	return out
}

// RankSkills orders a denormalized skill list: rating descending, ties
// broken by student count descending. Equal-rank entries keep no further
// guarantee.
func RankSkills(skills []SkillResponse) {
	sort.Slice(skills, func(i, j int) bool {
		if skills[i].Rating != skills[j].Rating {
			return skills[i].Rating > skills[j].Rating
		}
		return skills[i].Students > skills[j].Students
	})
}

// shapeSkills runs the fan-out joins (teach links → teacher profiles, stats)
// and merges them into the denormalized response rows.
func shapeSkills(db *gorm.DB, rows []models.Skill) ([]SkillResponse, error) {
	skillIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		skillIDs = append(skillIDs, row.ID)
	}

	teachLinks, err := loadTeachLinks(db, skillIDs)
	if err != nil {
		return nil, err
	}

	teacherIDs := make([]string, 0, len(teachLinks))
	for _, link := range teachLinks {
		teacherIDs = append(teacherIDs, link.UserID)
	}
	profiles, err := loadProfiles(db, teacherIDs)
	if err != nil {
		return nil, err
	}

	stats, err := loadSkillStats(db, skillIDs)
	if err != nil {
		return nil, err
	}

	out := make([]SkillResponse, 0, len(rows))
	for _, row := range rows {
		resp := SkillResponse{
			ID:          row.ID,
			Title:       row.Name,
			Slug:        row.Slug,
			Category:    row.Category,
			Description: row.Description,
			Teacher:     teacherSummary(nil),
			CreatedAt:   row.CreatedAt,
		}
		if st, ok := stats[row.ID]; ok {
			resp.Rating = st.AverageRating()
			resp.Students = st.StudentsCount
			resp.Sessions = st.SessionsCount
		}
		if link, ok := teachLinks[row.ID]; ok {
			if p, ok := profiles[link.UserID]; ok {
				resp.Teacher = teacherSummary(&p)
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

// ListSkills handles GET /api/skills with free-text search, category filter
// and clamped pagination. Ranking runs over the full filtered set before the
// page window is cut, so page 1 holds the top-rated skills — not the newest
// ones re-sorted per page.
func (s *SkillService) ListSkills(c *fiber.Ctx) error {
	page := ClampPage(c.Query("page", "1"))
	limit := ClampLimit(c.Query("limit"), skillPageLimitDefault, skillPageLimitMax)
	db := store(c, s.DB)

	query := db.Model(&models.Skill{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pattern := likePattern(q)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}

	var rows []models.Skill
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		log.Printf("❌ [SKILLS] fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	skills, err := shapeSkills(db, rows)
	if err != nil {
		log.Printf("❌ [SKILLS] join failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	RankSkills(skills)

	return c.JSON(fiber.Map{
		"skills": PageSlice(skills, page, limit),
		"page":   page,
		"limit":  limit,
		"total":  len(rows),
	})
}

// GetSkillByID handles GET /api/skills/:id
func (s *SkillService) GetSkillByID(c *fiber.Ctx) error {
	id := c.Params("id")
	db := store(c, s.DB)

	var skill models.Skill
	if err := db.First(&skill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "skill not found"})
		}
		log.Printf("❌ [SKILLS] fetch %s failed: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	shaped, err := shapeSkills(db, []models.Skill{skill})
	if err != nil {
		log.Printf("❌ [SKILLS] join for %s failed: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"skill": shaped[0]})
}

// CreateSkill handles POST /api/skills: one skill row plus the caller's
// teaching/learning link row, inserted in a single transaction.
func (s *SkillService) CreateSkill(c *fiber.Ctx) error {
	userID := CurrentUserID(c)

	type Req struct {
		Name        string  `json:"name"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		SkillType   string  `json:"skill_type"`
		Proficiency string  `json:"proficiency"`
		Rate        float64 `json:"rate"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	skillType := models.NormalizeSkillType(req.SkillType)
	if skillType != models.SkillTypeTeach && skillType != models.SkillTypeLearn {
		skillType = models.SkillTypeTeach
	}

	db := store(c, s.DB)
	skill := models.Skill{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        uniqueSlug(db, req.Name),
		Category:    req.Category,
		Description: req.Description,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&skill).Error; err != nil {
			return err
		}
		link := models.UserSkill{
			ID:          uuid.NewString(),
			UserID:      userID,
			SkillID:     skill.ID,
			SkillType:   skillType,
			Proficiency: req.Proficiency,
			Rate:        req.Rate,
		}
		return tx.Create(&link).Error
	})
	if err != nil {
		log.Printf("❌ [SKILLS] create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"skill": skill})
}

// uniqueSlug derives a URL slug from the skill name, suffixing a short id
// when the plain slug is already taken.
func uniqueSlug(db *gorm.DB, name string) string {
	base := slug.Make(name)
	var count int64
	if err := db.Model(&models.Skill{}).Where("slug = ?", base).Count(&count).Error; err == nil && count == 0 {
		return base
	}
	return base + "-" + uuid.NewString()[:8]
}

// GetSkillReviews handles GET /api/skills/:id/reviews — rated sessions for
// the skill, newest first, with the reviewer joined in.
func (s *SkillService) GetSkillReviews(c *fiber.Ctx) error {
	id := c.Params("id")
	page := ClampPage(c.Query("page", "1"))
	limit := ClampLimit(c.Query("limit"), skillPageLimitDefault, skillPageLimitMax)
	db := store(c, s.DB)

	var skill models.Skill
	if err := db.First(&skill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "skill not found"})
		}
		log.Printf("❌ [REVIEWS] skill fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	base := db.Table("sessions").
		Joins("INNER JOIN matches ON matches.id = sessions.match_id").
		Where("matches.skill_id = ? AND sessions.rating IS NOT NULL AND sessions.deleted_at IS NULL", id)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		log.Printf("❌ [REVIEWS] count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	type reviewRow struct {
		ID        string
		Rating    int
		Feedback  string
		LearnerID string
		CreatedAt time.Time `gorm:"column:created_at"`
	}
	var rows []reviewRow
	if err := base.
		Select("sessions.id, sessions.rating, sessions.feedback, matches.learner_id, sessions.updated_at AS created_at").
		Order("sessions.updated_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Scan(&rows).Error; err != nil {
		log.Printf("❌ [REVIEWS] fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	learnerIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		learnerIDs = append(learnerIDs, r.LearnerID)
	}
	reviewers, err := loadProfiles(db, learnerIDs)
	if err != nil {
		log.Printf("❌ [REVIEWS] reviewer join failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	data := make([]fiber.Map, 0, len(rows))
	for _, r := range rows {
		var reviewer TeacherSummary
		if p, ok := reviewers[r.LearnerID]; ok {
			reviewer = teacherSummary(&p)
		} else {
			reviewer = teacherSummary(nil)
		}
		data = append(data, fiber.Map{
			"id":         r.ID,
			"rating":     r.Rating,
			"comment":    r.Feedback,
			"created_at": r.CreatedAt,
			"reviewer":   reviewer,
		})
	}

	return c.JSON(fiber.Map{
		"data":  data,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}
