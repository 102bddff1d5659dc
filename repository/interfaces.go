// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/antrian-id/antrian-loket/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// EventRepository defines operations for events
type EventRepository interface {
	Repository[models.Event, models.EventFilter]
	ByCode(ctx context.Context, code string) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error
}

// LoketRepository defines operations for lokets
type LoketRepository interface {
	Repository[models.Loket, models.LoketFilter]
	// ByIDForUpdate loads a loket with a row-level lock; it must be called
	// inside a transaction (TxContextKey present in ctx).
	ByIDForUpdate(ctx context.Context, id uint) (*models.Loket, error)
	ByEventAndID(ctx context.Context, eventID, id uint) (*models.Loket, error)
	ListByEvent(ctx context.Context, eventID uint) ([]*models.Loket, error)
	Update(ctx context.Context, loket *models.Loket) error
	Delete(ctx context.Context, id uint) error
}

// TicketRepository defines operations for queue tickets
type TicketRepository interface {
	Repository[models.Ticket, models.TicketFilter]
	// MinWaitingByLoket returns the waiting ticket with the smallest number
	// for the loket, or nil when the queue is empty.
	MinWaitingByLoket(ctx context.Context, loketID uint) (*models.Ticket, error)
	ByLoketAndNumber(ctx context.Context, loketID uint, number int) (*models.Ticket, error)
	HoldNumbersByLoket(ctx context.Context, loketID uint) ([]int, error)
	CountByLoketAndStatus(ctx context.Context, loketID uint, status models.TicketStatus) (int64, error)
	ListByLoket(ctx context.Context, loketID uint) ([]*models.Ticket, error)
	ListByEvent(ctx context.Context, eventID uint) ([]*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) error
	DeleteByLoket(ctx context.Context, loketID uint) error
}

// SoundSourceRepository defines operations for sound source preferences
type SoundSourceRepository interface {
	Repository[models.SoundSource, models.SoundSourceFilter]
	ByEventAndRole(ctx context.Context, eventID uint, role string) (*models.SoundSource, error)
	Upsert(ctx context.Context, source *models.SoundSource) error
}
