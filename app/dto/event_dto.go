package dto

// EventDTO represents an event in API responses
type EventDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// CreateEventRequest carries data to create a new event
type CreateEventRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	Code string `json:"code" validate:"required,min=1,max=50"`
}

// UpdateEventRequest carries partial updates for an event
// Nil fields are left unchanged
type UpdateEventRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Code     *string `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	IsActive *bool   `json:"is_active,omitempty" validate:"omitempty"`
}
