package businessflow

import (
	"context"

	"github.com/antrian-id/antrian-loket/app/dto"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	"github.com/antrian-id/antrian-loket/utils"
	"gorm.io/gorm"
)

// EventFlow defines operations for managing events
type EventFlow interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest, metadata *ClientMetadata) (*dto.EventDTO, error)
	GetEvent(ctx context.Context, eventID uint) (*dto.EventDTO, error)
	ListEvents(ctx context.Context) ([]dto.EventDTO, error)
	UpdateEvent(ctx context.Context, eventID uint, req *dto.UpdateEventRequest, metadata *ClientMetadata) (*dto.EventDTO, error)
	DeleteEvent(ctx context.Context, eventID uint, metadata *ClientMetadata) error
}

// EventFlowImpl implements EventFlow
type EventFlowImpl struct {
	eventRepo repository.EventRepository
	loketRepo repository.LoketRepository
	db        *gorm.DB
}

func NewEventFlow(eventRepo repository.EventRepository, loketRepo repository.LoketRepository, db *gorm.DB) EventFlow {
	return &EventFlowImpl{eventRepo: eventRepo, loketRepo: loketRepo, db: db}
}

func (f *EventFlowImpl) CreateEvent(ctx context.Context, req *dto.CreateEventRequest, metadata *ClientMetadata) (*dto.EventDTO, error) {
	event := models.Event{
		Name:     req.Name,
		Code:     req.Code,
		IsActive: utils.ToPtr(true),
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		existing, err := f.eventRepo.ByCode(txCtx, req.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEventCodeExists
		}
		return f.eventRepo.Save(txCtx, &event)
	})
	if err != nil {
		// The unique index on code catches the race the pre-check misses.
		if repository.IsUniqueViolation(err) {
			return nil, ErrEventCodeExists
		}
		return nil, err
	}

	result := ToEventDTO(event)
	return &result, nil
}

func (f *EventFlowImpl) GetEvent(ctx context.Context, eventID uint) (*dto.EventDTO, error) {
	event, err := getEvent(ctx, f.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	result := ToEventDTO(*event)
	return &result, nil
}

func (f *EventFlowImpl) ListEvents(ctx context.Context) ([]dto.EventDTO, error) {
	events, err := f.eventRepo.ByFilter(ctx, models.EventFilter{}, "id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_EVENTS_FAILED", "Failed to list events", err)
	}

	result := make([]dto.EventDTO, 0, len(events))
	for _, e := range events {
		result = append(result, ToEventDTO(*e))
	}
	return result, nil
}

func (f *EventFlowImpl) UpdateEvent(ctx context.Context, eventID uint, req *dto.UpdateEventRequest, metadata *ClientMetadata) (*dto.EventDTO, error) {
	var updated models.Event

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		event, err := getEvent(txCtx, f.eventRepo, eventID)
		if err != nil {
			return err
		}

		if req.Code != nil && *req.Code != event.Code {
			existing, err := f.eventRepo.ByCode(txCtx, *req.Code)
			if err != nil {
				return err
			}
			if existing != nil {
				return ErrEventCodeExists
			}
			event.Code = *req.Code
		}
		if req.Name != nil {
			event.Name = *req.Name
		}
		if req.IsActive != nil {
			event.IsActive = req.IsActive
		}
		event.UpdatedAt = utils.UTCNow()

		if err := f.eventRepo.Update(txCtx, event); err != nil {
			return err
		}
		updated = *event
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEventCodeExists
		}
		return nil, err
	}

	result := ToEventDTO(updated)
	return &result, nil
}

func (f *EventFlowImpl) DeleteEvent(ctx context.Context, eventID uint, metadata *ClientMetadata) error {
	return repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		event, err := getEvent(txCtx, f.eventRepo, eventID)
		if err != nil {
			return err
		}

		count, err := f.loketRepo.Count(txCtx, models.LoketFilter{EventID: &event.ID})
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrEventHasLokets
		}

		return f.eventRepo.Delete(txCtx, event.ID)
	})
}
