package models

import "time"

// Display roles that may act as a sound source for queue announcements
const (
	SoundRoleMultiDisplay    = "multi_display"
	SoundRoleMultiDisplayLED = "multi_display_led"
	SoundRoleLoketDisplay    = "loket_display"
	SoundRoleLoketDisplayLED = "loket_display_led"
	SoundRoleLoketAdmin      = "loket_admin"
)

// SoundSource stores the per-event, per-role sound preference for display pages
// Table: sound_sources
type SoundSource struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID uint   `gorm:"not null;uniqueIndex:idx_sound_sources_event_role" json:"event_id"`
	Role    string `gorm:"type:varchar(50);not null;uniqueIndex:idx_sound_sources_event_role" json:"role"`
	Enabled bool   `gorm:"not null;default:true" json:"enabled"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Event *Event `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
}

func (SoundSource) TableName() string { return "sound_sources" }

// DefaultSoundEnabled returns the fallback preference for a role when no
// record exists: sound is on for display pages and off for admin pages.
func DefaultSoundEnabled(role string) bool {
	switch role {
	case SoundRoleMultiDisplay, SoundRoleLoketDisplay:
		return true
	default:
		return false
	}
}

// SoundSourceFilter represents filter criteria for sound source queries
type SoundSourceFilter struct {
	ID      *uint   `json:"id,omitempty"`
	EventID *uint   `json:"event_id,omitempty"`
	Role    *string `json:"role,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}
