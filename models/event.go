package models

import (
	"time"

	"github.com/antrian-id/antrian-loket/utils"
	"gorm.io/gorm"
)

// Event represents a top-level session grouping one or more lokets
// Table: events
// Code is unique across all events and used by display clients
type Event struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Code     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	IsActive *bool  `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Lokets  []Loket  `gorm:"foreignKey:EventID" json:"lokets,omitempty"`
	Tickets []Ticket `gorm:"foreignKey:EventID" json:"tickets,omitempty"`
}

func (Event) TableName() string { return "events" }

// BeforeCreate normalizes timestamps and defaults
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.IsActive == nil {
		e.IsActive = utils.ToPtr(true)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// EventFilter represents filter criteria for event queries
type EventFilter struct {
	ID            *uint      `json:"id,omitempty"`
	Name          *string    `json:"name,omitempty"`
	Code          *string    `json:"code,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
