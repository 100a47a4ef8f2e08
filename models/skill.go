package models

import "time"

// Canonical teach/learn intent values. Older rows were written with
// "teacher"/"learner" (and a short-lived "learning") — NormalizeSkillType
// maps all of them onto these two.
const (
	SkillTypeTeach = "teach"
	SkillTypeLearn = "learn"
)

// NormalizeSkillType maps legacy skill_type values to the canonical set.
// Unknown values pass through unchanged so bad data stays visible.
func NormalizeSkillType(t string) string {
	switch t {
	case "teacher", SkillTypeTeach:
		return SkillTypeTeach
	case "learner", "learning", SkillTypeLearn:
		return SkillTypeLearn
	}
	return t
}

// SkillTypeVariants returns every stored spelling of a canonical skill_type,
// for use in IN filters over historically inconsistent rows.
func SkillTypeVariants(canonical string) []string {
	switch canonical {
	case SkillTypeTeach:
		return []string{SkillTypeTeach, "teacher"}
	case SkillTypeLearn:
		return []string{SkillTypeLearn, "learner", "learning"}
	}
	return []string{canonical}
}

type Skill struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string `gorm:"index;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Category    string `gorm:"index" json:"category"`
	Description string `gorm:"type:text" json:"description"`

	Timestamps
}

// UserSkill links a profile to a skill with teaching or learning intent.
type UserSkill struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string    `gorm:"index;not null" json:"user_id"`
	SkillID     string    `gorm:"index;not null" json:"skill_id"`
	SkillType   string    `gorm:"type:varchar(16);not null" json:"skill_type"` // teach | learn
	Proficiency string    `json:"proficiency,omitempty"`                       // beginner | intermediate | expert
	Rate        float64   `json:"rate,omitempty"`                              // points per hour, 0 = free exchange
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// SkillStats is a derived per-skill aggregate maintained by the stats worker.
// Never written on the request path.
type SkillStats struct {
	SkillID       string    `gorm:"primaryKey;type:uuid" json:"skill_id"`
	SessionsCount int64     `json:"sessions_count" gorm:"default:0"`
	StudentsCount int64     `json:"students_count" gorm:"default:0"`
	RatingSum     float64   `json:"rating_sum" gorm:"default:0"`
	RatingCount   int64     `json:"rating_count" gorm:"default:0"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AverageRating is rating_sum/rating_count, 0 when nothing has been rated.
func (s *SkillStats) AverageRating() float64 {
	if s == nil || s.RatingCount == 0 {
		return 0
	}
	return s.RatingSum / float64(s.RatingCount)
}
