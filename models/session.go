package models

import "time"

const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// Session is a scheduled lesson inside a match. Rating stays nil until the
// learner submits a review.
type Session struct {
	ID              string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MatchID         string    `gorm:"index;not null" json:"match_id"`
	ScheduledAt     time.Time `gorm:"index;not null" json:"scheduled_at"`
	DurationMinutes int       `gorm:"default:60" json:"duration_minutes"`
	Status          string    `gorm:"type:varchar(16);default:'scheduled';check:status IN ('scheduled','completed','cancelled')" json:"status"`
	Rating          *int      `gorm:"check:rating >= 1 AND rating <= 5" json:"rating,omitempty"`
	Feedback        string    `gorm:"type:text" json:"feedback,omitempty"`

	Timestamps
}

// EndsAt is scheduled_at plus the session duration.
func (s *Session) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}
