package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/antrian-id/antrian-loket/app/dto"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// QueryFlow derives read-only queue views. Each snapshot is read inside one
// transaction so it reflects a single committed state: a current number never
// points at a ticket that is not actually called.
type QueryFlow interface {
	LoketInfo(ctx context.Context, loketID uint) (*dto.LoketInfoDTO, error)
	EventState(ctx context.Context, eventID uint) ([]dto.LoketInfoDTO, error)
}

// QueryFlowImpl implements QueryFlow
type QueryFlowImpl struct {
	eventRepo  repository.EventRepository
	loketRepo  repository.LoketRepository
	ticketRepo repository.TicketRepository
	db         *gorm.DB
	rc         *redis.Client
}

func NewQueryFlow(eventRepo repository.EventRepository, loketRepo repository.LoketRepository, ticketRepo repository.TicketRepository, db *gorm.DB, rc *redis.Client) QueryFlow {
	return &QueryFlowImpl{eventRepo: eventRepo, loketRepo: loketRepo, ticketRepo: ticketRepo, db: db, rc: rc}
}

// loketSnapshot builds the view for one loket inside the caller's transaction
func (f *QueryFlowImpl) loketSnapshot(txCtx context.Context, loket *models.Loket) (*dto.LoketInfoDTO, error) {
	waiting, err := f.ticketRepo.CountByLoketAndStatus(txCtx, loket.ID, models.TicketStatusWaiting)
	if err != nil {
		return nil, err
	}

	holdNumbers, err := f.ticketRepo.HoldNumbersByLoket(txCtx, loket.ID)
	if err != nil {
		return nil, err
	}

	return &dto.LoketInfoDTO{
		LoketID:          loket.ID,
		LoketName:        loket.Name,
		LoketCode:        loket.Code,
		LoketDescription: loket.Description,
		CurrentNumber:    loket.CurrentNumber,
		QueueLength:      waiting,
		HoldNumbers:      holdNumbers,
		LastTicketNumber: loket.LastTicketNumber,
		LastRepeatAt:     loket.LastRepeatAt,
	}, nil
}

func (f *QueryFlowImpl) LoketInfo(ctx context.Context, loketID uint) (*dto.LoketInfoDTO, error) {
	cacheKey := fmt.Sprintf("%s%d", utils.LoketInfoCacheKeyPrefix, loketID)
	if f.rc != nil {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.LoketInfoDTO
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var info *dto.LoketInfoDTO
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		loket, err := getLoket(txCtx, f.loketRepo, loketID)
		if err != nil {
			return err
		}
		info, err = f.loketSnapshot(txCtx, loket)
		return err
	})
	if err != nil {
		return nil, err
	}

	if f.rc != nil {
		if bs, err := json.Marshal(info); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, utils.LoketInfoCacheTTL).Err()
		}
	}

	return info, nil
}

func (f *QueryFlowImpl) EventState(ctx context.Context, eventID uint) ([]dto.LoketInfoDTO, error) {
	var states []dto.LoketInfoDTO

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if _, err := getEvent(txCtx, f.eventRepo, eventID); err != nil {
			return err
		}

		lokets, err := f.loketRepo.ListByEvent(txCtx, eventID)
		if err != nil {
			return err
		}

		states = make([]dto.LoketInfoDTO, 0, len(lokets))
		for _, loket := range lokets {
			info, err := f.loketSnapshot(txCtx, loket)
			if err != nil {
				return err
			}
			states = append(states, *info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return states, nil
}
