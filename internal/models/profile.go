package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile is the public profile of an authenticated user. ID is the
// Firebase UID.
type Profile struct {
	ID          string `json:"id" gorm:"primaryKey;size:128"`
	FullName    string `json:"full_name"`
	DisplayName string `json:"display_name" gorm:"index"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	// ProgrammingLanguages is kept raw: older rows hold a JSON array, a
	// JSON-encoded string of an array, or a single bare string.
	ProgrammingLanguages      datatypes.JSON `json:"programming_languages" gorm:"type:jsonb"`
	EmailNotificationsEnabled bool           `json:"email_notifications_enabled" gorm:"default:false;index"`
	CreatedAt                 time.Time      `json:"created_at"`
	UpdatedAt                 time.Time      `json:"updated_at"`
}

// ProfileCompact is the author/actor card embedded in feeds and notifications.
type ProfileCompact struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Name returns the best available human-readable name.
func (p *Profile) Name() string {
	switch {
	case p == nil:
		return DefaultDisplayName
	case p.DisplayName != "":
		return p.DisplayName
	case p.FullName != "":
		return p.FullName
	}
	return DefaultDisplayName
}

func (p *Profile) ToCompact() ProfileCompact {
	return ProfileCompact{ID: p.ID, DisplayName: p.Name(), AvatarURL: p.AvatarURL}
}

// DefaultDisplayName is used whenever a sender's profile cannot be loaded.
const DefaultDisplayName = "Someone"

type UpdateProfileRequest struct {
	FullName                  *string  `json:"full_name,omitempty" validate:"omitempty,max=100"`
	DisplayName               *string  `json:"display_name,omitempty" validate:"omitempty,min=2,max=50"`
	AvatarURL                 *string  `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Bio                       *string  `json:"bio,omitempty" validate:"omitempty,max=280"`
	ProgrammingLanguages      []string `json:"programming_languages,omitempty" validate:"omitempty,max=30,dive,min=1,max=40"`
	EmailNotificationsEnabled *bool    `json:"email_notifications_enabled,omitempty"`
}
