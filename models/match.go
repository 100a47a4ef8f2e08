package models

const (
	MatchStatusPending   = "pending"
	MatchStatusAccepted  = "accepted"
	MatchStatusDeclined  = "declined"
	MatchStatusCompleted = "completed"
)

// Match pairs exactly one teacher and one learner over a skill.
type Match struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TeacherID string `gorm:"index;not null" json:"teacher_id"`
	LearnerID string `gorm:"index;not null" json:"learner_id"`
	SkillID   string `gorm:"index;not null" json:"skill_id"`
	Status    string `gorm:"type:varchar(16);default:'pending';check:status IN ('pending','accepted','declined','completed')" json:"status"`

	Timestamps
}

// CounterpartID returns the other participant, or "" if userID is not part
// of the match.
func (m *Match) CounterpartID(userID string) string {
	switch userID {
	case m.TeacherID:
		return m.LearnerID
	case m.LearnerID:
		return m.TeacherID
	}
	return ""
}

// Involves reports whether userID is either side of the match.
func (m *Match) Involves(userID string) bool {
	return userID != "" && (m.TeacherID == userID || m.LearnerID == userID)
}
