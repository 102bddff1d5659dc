package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/antrian-id/antrian-loket/utils"
	"gorm.io/gorm"
)

// TicketStatus represents the lifecycle status of a queue ticket
type TicketStatus string

const (
	TicketStatusWaiting TicketStatus = "waiting"
	TicketStatusCalled  TicketStatus = "called"
	TicketStatusHold    TicketStatus = "hold"
	TicketStatusDone    TicketStatus = "done"
)

// String returns the string representation of the status
func (s TicketStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusWaiting, TicketStatusCalled, TicketStatusHold, TicketStatusDone:
		return true
	default:
		return false
	}
}

// CanHold reports whether a ticket in this status may be placed on hold
func (s TicketStatus) CanHold() bool {
	return s == TicketStatusWaiting || s == TicketStatusCalled
}

// Scan implements the sql.Scanner interface for TicketStatus
func (s *TicketStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = TicketStatus(v)
	case []byte:
		*s = TicketStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TicketStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for TicketStatus
func (s TicketStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Ticket represents a single queue position issued against a loket's sequence
// Table: tickets
// Number is unique within a loket (enforced by idx_tickets_loket_number),
// not globally
type Ticket struct {
	ID      uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID uint         `gorm:"not null;index" json:"event_id"`
	LoketID uint         `gorm:"not null;uniqueIndex:idx_tickets_loket_number;index:idx_tickets_loket_status" json:"loket_id"`
	Number  int          `gorm:"not null;uniqueIndex:idx_tickets_loket_number" json:"number"`
	Status  TicketStatus `gorm:"type:varchar(20);not null;default:'waiting';index:idx_tickets_loket_status" json:"status"`

	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CalledAt  *time.Time `json:"called_at,omitempty"`

	// Relations
	Event *Event `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
	Loket *Loket `gorm:"foreignKey:LoketID;references:ID;constraint:OnDelete:CASCADE" json:"loket,omitempty"`
}

func (Ticket) TableName() string { return "tickets" }

// BeforeCreate sets the default status and normalizes timestamps
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TicketStatusWaiting
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	return nil
}

// TicketFilter represents filter criteria for ticket queries
type TicketFilter struct {
	ID            *uint         `json:"id,omitempty"`
	EventID       *uint         `json:"event_id,omitempty"`
	LoketID       *uint         `json:"loket_id,omitempty"`
	Number        *int          `json:"number,omitempty"`
	Status        *TicketStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time    `json:"created_after,omitempty"`
	CreatedBefore *time.Time    `json:"created_before,omitempty"`
}
