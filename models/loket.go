package models

import (
	"time"

	"github.com/antrian-id/antrian-loket/utils"
	"gorm.io/gorm"
)

// Loket represents a service counter within an event
// Table: lokets
// CurrentNumber is the number being served right now, nil when nothing is
// active (including while the last called ticket is on hold).
// LastTicketNumber is the high-water mark of issued numbers; it only moves
// forward except through an explicit reset.
type Loket struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     uint    `gorm:"not null;index" json:"event_id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Code        string  `gorm:"type:varchar(10);not null" json:"code"`
	Description *string `gorm:"type:varchar(255)" json:"description,omitempty"`

	CurrentNumber    *int       `json:"current_number,omitempty"`
	LastTicketNumber int        `gorm:"not null;default:0" json:"last_ticket_number"`
	LastRepeatAt     *time.Time `json:"last_repeat_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Event   *Event   `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
	Tickets []Ticket `gorm:"foreignKey:LoketID" json:"tickets,omitempty"`
}

func (Loket) TableName() string { return "lokets" }

// BeforeCreate normalizes timestamps
func (l *Loket) BeforeCreate(tx *gorm.DB) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = utils.UTCNow()
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// LoketFilter represents filter criteria for loket queries
type LoketFilter struct {
	ID            *uint      `json:"id,omitempty"`
	EventID       *uint      `json:"event_id,omitempty"`
	Name          *string    `json:"name,omitempty"`
	Code          *string    `json:"code,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
