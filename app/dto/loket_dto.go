package dto

import "time"

// LoketDTO represents a service counter in API responses
type LoketDTO struct {
	ID               uint       `json:"id"`
	EventID          uint       `json:"event_id"`
	Name             string     `json:"name"`
	Code             string     `json:"code"`
	Description      *string    `json:"description,omitempty"`
	CurrentNumber    *int       `json:"current_number"`
	LastTicketNumber int        `json:"last_ticket_number"`
	LastRepeatAt     *time.Time `json:"last_repeat_at,omitempty"`
}

// CreateLoketRequest carries data to create a new loket under an event
type CreateLoketRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Code        string  `json:"code" validate:"required,min=1,max=10"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// UpdateLoketRequest carries partial updates for a loket
// Nil fields are left unchanged
type UpdateLoketRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Code        *string `json:"code,omitempty" validate:"omitempty,min=1,max=10"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// LoketInfoDTO is the public snapshot of one loket's queue
// CurrentNumber is nil when no number is being served
type LoketInfoDTO struct {
	LoketID          uint       `json:"loket_id"`
	LoketName        string     `json:"loket_name"`
	LoketCode        string     `json:"loket_code"`
	LoketDescription *string    `json:"loket_description,omitempty"`
	CurrentNumber    *int       `json:"current_number"`
	QueueLength      int64      `json:"queue_length"`
	HoldNumbers      []int      `json:"hold_numbers"`
	LastTicketNumber int        `json:"last_ticket_number"`
	LastRepeatAt     *time.Time `json:"last_repeat_at,omitempty"`
}
