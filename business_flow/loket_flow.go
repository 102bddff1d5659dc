package businessflow

import (
	"context"

	"github.com/antrian-id/antrian-loket/app/dto"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// LoketFlow defines operations for managing lokets
type LoketFlow interface {
	CreateLoket(ctx context.Context, eventID uint, req *dto.CreateLoketRequest, metadata *ClientMetadata) (*dto.LoketDTO, error)
	GetLoket(ctx context.Context, eventID, loketID uint) (*dto.LoketDTO, error)
	ListLokets(ctx context.Context, eventID uint) ([]dto.LoketDTO, error)
	UpdateLoket(ctx context.Context, eventID, loketID uint, req *dto.UpdateLoketRequest, metadata *ClientMetadata) (*dto.LoketDTO, error)
	DeleteLoket(ctx context.Context, eventID, loketID uint, metadata *ClientMetadata) error
	ResetLoket(ctx context.Context, eventID, loketID uint, metadata *ClientMetadata) (*dto.LoketDTO, error)
}

// LoketFlowImpl implements LoketFlow
type LoketFlowImpl struct {
	eventRepo  repository.EventRepository
	loketRepo  repository.LoketRepository
	ticketRepo repository.TicketRepository
	db         *gorm.DB
	rc         *redis.Client
}

func NewLoketFlow(eventRepo repository.EventRepository, loketRepo repository.LoketRepository, ticketRepo repository.TicketRepository, db *gorm.DB, rc *redis.Client) LoketFlow {
	return &LoketFlowImpl{eventRepo: eventRepo, loketRepo: loketRepo, ticketRepo: ticketRepo, db: db, rc: rc}
}

// getEventLoket loads a loket scoped to an event or fails with ErrLoketNotFound
func (f *LoketFlowImpl) getEventLoket(ctx context.Context, eventID, loketID uint) (*models.Loket, error) {
	loket, err := f.loketRepo.ByEventAndID(ctx, eventID, loketID)
	if err != nil {
		return nil, NewBusinessError("GET_LOKET_FAILED", "Failed to load loket", err)
	}
	if loket == nil {
		return nil, ErrLoketNotFound
	}
	return loket, nil
}

func (f *LoketFlowImpl) CreateLoket(ctx context.Context, eventID uint, req *dto.CreateLoketRequest, metadata *ClientMetadata) (*dto.LoketDTO, error) {
	if _, err := getEvent(ctx, f.eventRepo, eventID); err != nil {
		return nil, err
	}

	loket := models.Loket{
		EventID:     eventID,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	}
	if err := f.loketRepo.Save(ctx, &loket); err != nil {
		return nil, NewBusinessError("CREATE_LOKET_FAILED", "Failed to create loket", err)
	}

	result := ToLoketDTO(loket)
	return &result, nil
}

func (f *LoketFlowImpl) GetLoket(ctx context.Context, eventID, loketID uint) (*dto.LoketDTO, error) {
	loket, err := f.getEventLoket(ctx, eventID, loketID)
	if err != nil {
		return nil, err
	}
	result := ToLoketDTO(*loket)
	return &result, nil
}

func (f *LoketFlowImpl) ListLokets(ctx context.Context, eventID uint) ([]dto.LoketDTO, error) {
	if _, err := getEvent(ctx, f.eventRepo, eventID); err != nil {
		return nil, err
	}

	lokets, err := f.loketRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, NewBusinessError("LIST_LOKETS_FAILED", "Failed to list lokets", err)
	}

	result := make([]dto.LoketDTO, 0, len(lokets))
	for _, l := range lokets {
		result = append(result, ToLoketDTO(*l))
	}
	return result, nil
}

func (f *LoketFlowImpl) UpdateLoket(ctx context.Context, eventID, loketID uint, req *dto.UpdateLoketRequest, metadata *ClientMetadata) (*dto.LoketDTO, error) {
	var updated models.Loket

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		loket, err := f.getEventLoket(txCtx, eventID, loketID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			loket.Name = *req.Name
		}
		if req.Code != nil {
			loket.Code = *req.Code
		}
		if req.Description != nil {
			loket.Description = req.Description
		}
		loket.UpdatedAt = utils.UTCNow()

		if err := f.loketRepo.Update(txCtx, loket); err != nil {
			return err
		}
		updated = *loket
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := ToLoketDTO(updated)
	return &result, nil
}

func (f *LoketFlowImpl) DeleteLoket(ctx context.Context, eventID, loketID uint, metadata *ClientMetadata) error {
	return repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		loket, err := f.getEventLoket(txCtx, eventID, loketID)
		if err != nil {
			return err
		}

		waiting, err := f.ticketRepo.CountByLoketAndStatus(txCtx, loket.ID, models.TicketStatusWaiting)
		if err != nil {
			return err
		}
		if waiting > 0 {
			return ErrLoketHasWaitingTickets
		}

		if err := f.ticketRepo.DeleteByLoket(txCtx, loket.ID); err != nil {
			return err
		}
		return f.loketRepo.Delete(txCtx, loket.ID)
	})
}

// ResetLoket deletes every ticket of the loket (all statuses) and zeroes both
// counters. This is a full sequence restart, not a queue transition.
func (f *LoketFlowImpl) ResetLoket(ctx context.Context, eventID, loketID uint, metadata *ClientMetadata) (*dto.LoketDTO, error) {
	var updated models.Loket

	err := withRetry(ctx, f.db, func(txCtx context.Context) error {
		loket, err := f.loketRepo.ByIDForUpdate(txCtx, loketID)
		if err != nil {
			return err
		}
		if loket == nil || loket.EventID != eventID {
			return ErrLoketNotFound
		}

		if err := f.ticketRepo.DeleteByLoket(txCtx, loket.ID); err != nil {
			return err
		}

		loket.CurrentNumber = nil
		loket.LastTicketNumber = 0
		loket.UpdatedAt = utils.UTCNow()
		if err := f.loketRepo.Update(txCtx, loket); err != nil {
			return err
		}
		updated = *loket
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateLoketCache(ctx, f.rc, loketID)

	result := ToLoketDTO(updated)
	return &result, nil
}
