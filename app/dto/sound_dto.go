package dto

// SoundConfigDTO represents the sound setting of a single display role
type SoundConfigDTO struct {
	EventID uint   `json:"event_id"`
	Role    string `json:"role"`
	Enabled bool   `json:"enabled"`
}

// SoundConfigAllDTO represents the sound settings of all display roles of an event
type SoundConfigAllDTO struct {
	EventID         uint `json:"event_id"`
	MultiDisplay    bool `json:"multi_display"`
	MultiDisplayLED bool `json:"multi_display_led"`
	LoketDisplay    bool `json:"loket_display"`
	LoketDisplayLED bool `json:"loket_display_led"`
	LoketAdmin      bool `json:"loket_admin"`
}

// UpdateSoundConfigRequest replaces the sound settings of all display roles
type UpdateSoundConfigRequest struct {
	MultiDisplay    bool `json:"multi_display"`
	MultiDisplayLED bool `json:"multi_display_led"`
	LoketDisplay    bool `json:"loket_display"`
	LoketDisplayLED bool `json:"loket_display_led"`
	LoketAdmin      bool `json:"loket_admin"`
}
