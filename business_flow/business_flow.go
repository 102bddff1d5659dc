// Package businessflow contains the core business logic for the queue system
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/antrian-id/antrian-loket/app/dto"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// getEvent loads an event or fails with ErrEventNotFound
func getEvent(ctx context.Context, repo repository.EventRepository, eventID uint) (*models.Event, error) {
	event, err := repo.ByID(ctx, eventID)
	if err != nil {
		return nil, NewBusinessError("GET_EVENT_FAILED", "Failed to load event", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// getLoket loads a loket or fails with ErrLoketNotFound
func getLoket(ctx context.Context, repo repository.LoketRepository, loketID uint) (*models.Loket, error) {
	loket, err := repo.ByID(ctx, loketID)
	if err != nil {
		return nil, NewBusinessError("GET_LOKET_FAILED", "Failed to load loket", err)
	}
	if loket == nil {
		return nil, ErrLoketNotFound
	}
	return loket, nil
}

// withRetry runs fn inside a transaction, retrying a bounded number of times
// when the store aborts it with a serialization failure, deadlock, or lock
// timeout. Any other error aborts immediately.
func withRetry(ctx context.Context, db *gorm.DB, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < utils.QueueTxMaxRetries; attempt++ {
		err = repository.WithTransaction(ctx, db, fn)
		if err == nil || !repository.IsTransientError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreContention, err)
}

// ToEventDTO converts an event model to its response DTO
func ToEventDTO(event models.Event) dto.EventDTO {
	return dto.EventDTO{
		ID:        event.ID,
		Name:      event.Name,
		Code:      event.Code,
		IsActive:  utils.IsTrue(event.IsActive),
		CreatedAt: event.CreatedAt.Format(time.RFC3339),
	}
}

// ToLoketDTO converts a loket model to its response DTO
func ToLoketDTO(loket models.Loket) dto.LoketDTO {
	return dto.LoketDTO{
		ID:               loket.ID,
		EventID:          loket.EventID,
		Name:             loket.Name,
		Code:             loket.Code,
		Description:      loket.Description,
		CurrentNumber:    loket.CurrentNumber,
		LastTicketNumber: loket.LastTicketNumber,
		LastRepeatAt:     loket.LastRepeatAt,
	}
}

// ToTicketDTO converts a ticket model to its response DTO
func ToTicketDTO(ticket models.Ticket) dto.TicketDTO {
	return dto.TicketDTO{
		ID:        ticket.ID,
		EventID:   ticket.EventID,
		LoketID:   ticket.LoketID,
		Number:    ticket.Number,
		Status:    ticket.Status.String(),
		CreatedAt: ticket.CreatedAt.Format(time.RFC3339),
		CalledAt:  ticket.CalledAt,
	}
}

// invalidateLoketCache drops the cached snapshot for a loket after a queue
// mutation. Cache errors are non-fatal: the snapshot has a short TTL anyway.
func invalidateLoketCache(ctx context.Context, rc *redis.Client, loketID uint) {
	if rc == nil {
		return
	}
	key := fmt.Sprintf("%s%d", utils.LoketInfoCacheKeyPrefix, loketID)
	_ = rc.Del(ctx, key).Err()
}
