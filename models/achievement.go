package models

import "time"

// PointsPerAchievement is the fixed leaderboard multiplier: every earned
// achievement is worth exactly 100 points.
const PointsPerAchievement = 100

// Achievement is a one-shot badge earned by a user. Rows are immutable after
// insert — no update path exists anywhere in this service.
type Achievement struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string    `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	BadgeType   string    `gorm:"type:varchar(32);default:'milestone'" json:"badge_type"` // milestone | streak | community
	EarnedAt    time.Time `json:"earned_at" gorm:"autoCreateTime;index"`
}
