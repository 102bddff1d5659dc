package dto

import "time"

// TicketDTO represents a queue ticket in API responses
type TicketDTO struct {
	ID        uint       `json:"id"`
	EventID   uint       `json:"event_id"`
	LoketID   uint       `json:"loket_id"`
	Number    int        `json:"number"`
	Status    string     `json:"status"`
	CreatedAt string     `json:"created_at"`
	CalledAt  *time.Time `json:"called_at,omitempty"`
}

// IssueTicketResponse returns the freshly issued number with its context
type IssueTicketResponse struct {
	TicketID  uint   `json:"ticket_id"`
	EventID   uint   `json:"event_id"`
	EventName string `json:"event_name"`
	LoketID   uint   `json:"loket_id"`
	LoketName string `json:"loket_name"`
	LoketCode string `json:"loket_code"`
	Number    int    `json:"number"`
	Status    string `json:"status"`
}

// CallNextResponse reports the outcome of a call-next operation
// CalledNumber is nil and Ticket is absent when the queue is empty
type CallNextResponse struct {
	LoketID      uint       `json:"loket_id"`
	LoketCode    string     `json:"loket_code"`
	CalledNumber *int       `json:"called_number"`
	Message      string     `json:"message"`
	Ticket       *TicketDTO `json:"ticket,omitempty"`
}

// RecallRequest names the held number to bring back
type RecallRequest struct {
	Number int `json:"number" validate:"required,min=1"`
}
