package models

import "time"

const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// Message belongs to a match; ordered by created_at ascending within a
// conversation.
type Message struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MatchID     string    `gorm:"index;not null" json:"match_id"`
	SenderID    string    `gorm:"index;not null" json:"sender_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	MessageType string    `gorm:"type:varchar(16);default:'text'" json:"message_type"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
