package testing

import (
	"fmt"

	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestEvent creates an active event with a unique code
func (tf *TestFixtures) CreateTestEvent(name string) (*models.Event, error) {
	event := &models.Event{
		Name:     name,
		Code:     fmt.Sprintf("EV-%s", uuid.New().String()[:8]),
		IsActive: utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test event: %w", err)
	}
	return event, nil
}

// CreateTestLoket creates a loket under the given event
func (tf *TestFixtures) CreateTestLoket(eventID uint, name string) (*models.Loket, error) {
	loket := &models.Loket{
		EventID: eventID,
		Name:    name,
		Code:    fmt.Sprintf("L-%s", uuid.New().String()[:8]),
	}
	if err := tf.DB.DB.Create(loket).Error; err != nil {
		return nil, fmt.Errorf("failed to create test loket: %w", err)
	}
	return loket, nil
}

// CreateTestTicket creates a ticket with the given number and status
func (tf *TestFixtures) CreateTestTicket(eventID, loketID uint, number int, status models.TicketStatus) (*models.Ticket, error) {
	ticket := &models.Ticket{
		EventID: eventID,
		LoketID: loketID,
		Number:  number,
		Status:  status,
	}
	if status == models.TicketStatusCalled || status == models.TicketStatusHold || status == models.TicketStatusDone {
		ticket.CalledAt = utils.UTCNowPtr()
	}
	if err := tf.DB.DB.Create(ticket).Error; err != nil {
		return nil, fmt.Errorf("failed to create test ticket: %w", err)
	}
	return ticket, nil
}
