package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is a local mirror of the auth platform's user directory.
// Owned writes happen only through the profile sync worker; everything
// else in this service reads it.
type Profile struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	DisplayName *string `gorm:"index" json:"display_name,omitempty"`
	AvatarURL   string  `gorm:"type:text" json:"avatar_url,omitempty"`
	Location    string  `json:"location,omitempty"`
	Bio         string  `gorm:"type:text" json:"bio,omitempty"`

	Timestamps
}

// Placeholder values rendered when a profile join comes back empty.
// The client contract depends on these exact strings.
const (
	FallbackName     = "Unknown"
	FallbackAvatar   = "/diverse-avatars.png"
	FallbackLocation = "—"
)

// Name returns the display name or the documented fallback.
func (p *Profile) Name() string {
	if p == nil || p.DisplayName == nil || *p.DisplayName == "" {
		return FallbackName
	}
	return *p.DisplayName
}

// Avatar returns the avatar URL or the documented fallback.
func (p *Profile) Avatar() string {
	if p == nil || p.AvatarURL == "" {
		return FallbackAvatar
	}
	return p.AvatarURL
}

// Place returns the location or the documented fallback.
func (p *Profile) Place() string {
	if p == nil || p.Location == "" {
		return FallbackLocation
	}
	return p.Location
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
