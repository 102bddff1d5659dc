package businessflow

import (
	"context"

	"github.com/antrian-id/antrian-loket/app/dto"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ticketsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "queue_tickets_issued_total",
		Help: "Total number of queue tickets issued",
	})
	ticketsCalledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "queue_tickets_called_total",
		Help: "Total number of queue tickets called (next or recall)",
	})
)

// QueueFlow defines the ticket allocator and the call/hold state machine.
//
// Every mutating operation runs in one transaction that first locks the loket
// row, so concurrent operations on the same loket serialize while different
// lokets never contend.
type QueueFlow interface {
	IssueTicket(ctx context.Context, eventID, loketID uint, metadata *ClientMetadata) (*dto.IssueTicketResponse, error)
	// CallNext returns nil when no ticket is waiting; an empty queue is not
	// an error.
	CallNext(ctx context.Context, loketID uint, metadata *ClientMetadata) (*dto.CallNextResponse, error)
	HoldCurrent(ctx context.Context, loketID uint, metadata *ClientMetadata) (*dto.TicketDTO, error)
	RecallHeld(ctx context.Context, loketID uint, number int, metadata *ClientMetadata) (*dto.TicketDTO, error)
	Repeat(ctx context.Context, loketID uint, metadata *ClientMetadata) (*dto.LoketDTO, error)
}

// QueueFlowImpl implements QueueFlow
type QueueFlowImpl struct {
	eventRepo  repository.EventRepository
	loketRepo  repository.LoketRepository
	ticketRepo repository.TicketRepository
	db         *gorm.DB
	rc         *redis.Client
}

func NewQueueFlow(eventRepo repository.EventRepository, loketRepo repository.LoketRepository, ticketRepo repository.TicketRepository, db *gorm.DB, rc *redis.Client) QueueFlow {
	return &QueueFlowImpl{eventRepo: eventRepo, loketRepo: loketRepo, ticketRepo: ticketRepo, db: db, rc: rc}
}

// lockLoket loads the loket under FOR UPDATE inside the current transaction
func (f *QueueFlowImpl) lockLoket(txCtx context.Context, loketID uint) (*models.Loket, error) {
	loket, err := f.loketRepo.ByIDForUpdate(txCtx, loketID)
	if err != nil {
		return nil, err
	}
	if loket == nil {
		return nil, ErrLoketNotFound
	}
	return loket, nil
}

// IssueTicket atomically increments the loket's last ticket number and
// creates a waiting ticket carrying the new number. The row lock makes the
// read-increment-write atomic; the unique index on (loket_id, number) is the
// backstop against duplicates.
func (f *QueueFlowImpl) IssueTicket(ctx context.Context, eventID, loketID uint, metadata *ClientMetadata) (*dto.IssueTicketResponse, error) {
	var (
		ticket models.Ticket
		loket  models.Loket
		event  models.Event
	)

	err := withRetry(ctx, f.db, func(txCtx context.Context) error {
		locked, err := f.lockLoket(txCtx, loketID)
		if err != nil {
			return err
		}
		if locked.EventID != eventID {
			return ErrLoketNotFound
		}

		ev, err := getEvent(txCtx, f.eventRepo, eventID)
		if err != nil {
			return err
		}

		locked.LastTicketNumber++
		locked.UpdatedAt = utils.UTCNow()
		if err := f.loketRepo.Update(txCtx, locked); err != nil {
			return err
		}

		ticket = models.Ticket{
			EventID: eventID,
			LoketID: locked.ID,
			Number:  locked.LastTicketNumber,
			Status:  models.TicketStatusWaiting,
		}
		if err := f.ticketRepo.Save(txCtx, &ticket); err != nil {
			return err
		}

		loket = *locked
		event = *ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	ticketsIssuedTotal.Inc()
	invalidateLoketCache(ctx, f.rc, loketID)

	return &dto.IssueTicketResponse{
		TicketID:  ticket.ID,
		EventID:   event.ID,
		EventName: event.Name,
		LoketID:   loket.ID,
		LoketName: loket.Name,
		LoketCode: loket.Code,
		Number:    ticket.Number,
		Status:    ticket.Status.String(),
	}, nil
}

// CallNext transitions the lowest-numbered waiting ticket to called and makes
// it the loket's current number. Tickets on hold are not touched.
func (f *QueueFlowImpl) CallNext(ctx context.Context, loketID uint, metadata *ClientMetadata) (*dto.CallNextResponse, error) {
	var (
		called *models.Ticket
		loket  models.Loket
	)

	err := withRetry(ctx, f.db, func(txCtx context.Context) error {
		locked, err := f.lockLoket(txCtx, loketID)
		if err != nil {
			return err
		}

		ticket, err := f.ticketRepo.MinWaitingByLoket(txCtx, locked.ID)
		if err != nil {
			return err
		}
		if ticket == nil {
			called = nil
			loket = *locked
			return nil
		}

		ticket.Status = models.TicketStatusCalled
		ticket.CalledAt = utils.UTCNowPtr()
		if err := f.ticketRepo.Update(txCtx, ticket); err != nil {
			return err
		}

		locked.CurrentNumber = &ticket.Number
		locked.UpdatedAt = utils.UTCNow()
		if err := f.loketRepo.Update(txCtx, locked); err != nil {
			return err
		}

		called = ticket
		loket = *locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateLoketCache(ctx, f.rc, loketID)

	resp := &dto.CallNextResponse{
		LoketID:   loket.ID,
		LoketCode: loket.Code,
	}
	if called == nil {
		resp.Message = "No ticket waiting"
		return resp, nil
	}

	ticketsCalledTotal.Inc()
	resp.CalledNumber = &called.Number
	resp.Message = "Calling next number"
	ticketDTO := ToTicketDTO(*called)
	resp.Ticket = &ticketDTO
	return resp, nil
}

// HoldCurrent moves the loket's current ticket to hold and clears the current
// number. Only the ticket whose number equals the current number can be held.
func (f *QueueFlowImpl) HoldCurrent(ctx context.Context, loketID uint, metadata *ClientMetadata) (*dto.TicketDTO, error) {
	var held models.Ticket

	err := withRetry(ctx, f.db, func(txCtx context.Context) error {
		locked, err := f.lockLoket(txCtx, loketID)
		if err != nil {
			return err
		}

		if locked.CurrentNumber == nil {
			return ErrNoActiveNumber
		}

		ticket, err := f.ticketRepo.ByLoketAndNumber(txCtx, locked.ID, *locked.CurrentNumber)
		if err != nil {
			return err
		}
		if ticket == nil {
			// current_number points at nothing: an invariant the state
			// machine owns is broken. Surface it, never repair it here.
			return NewBusinessError("QUEUE_STATE_CORRUPTED",
				"current number has no matching ticket", ErrQueueStateCorrupted)
		}
		if !ticket.Status.CanHold() {
			return ErrCannotHoldStatus
		}

		ticket.Status = models.TicketStatusHold
		if err := f.ticketRepo.Update(txCtx, ticket); err != nil {
			return err
		}

		locked.CurrentNumber = nil
		locked.UpdatedAt = utils.UTCNow()
		if err := f.loketRepo.Update(txCtx, locked); err != nil {
			return err
		}

		held = *ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateLoketCache(ctx, f.rc, loketID)

	result := ToTicketDTO(held)
	return &result, nil
}

// RecallHeld calls a held number again and makes it the current number.
// A previously called ticket is deliberately left in called status; recalling
// does not complete whatever was current before.
func (f *QueueFlowImpl) RecallHeld(ctx context.Context, loketID uint, number int, metadata *ClientMetadata) (*dto.TicketDTO, error) {
	var recalled models.Ticket

	err := withRetry(ctx, f.db, func(txCtx context.Context) error {
		locked, err := f.lockLoket(txCtx, loketID)
		if err != nil {
			return err
		}

		ticket, err := f.ticketRepo.ByLoketAndNumber(txCtx, locked.ID, number)
		if err != nil {
			return err
		}
		if ticket == nil || ticket.Status != models.TicketStatusHold {
			return ErrHeldTicketNotFound
		}

		ticket.Status = models.TicketStatusCalled
		ticket.CalledAt = utils.UTCNowPtr()
		if err := f.ticketRepo.Update(txCtx, ticket); err != nil {
			return err
		}

		locked.CurrentNumber = &ticket.Number
		locked.UpdatedAt = utils.UTCNow()
		if err := f.loketRepo.Update(txCtx, locked); err != nil {
			return err
		}

		recalled = *ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	ticketsCalledTotal.Inc()
	invalidateLoketCache(ctx, f.rc, loketID)

	result := ToTicketDTO(recalled)
	return &result, nil
}

// Repeat stamps the loket's last repeat time so display clients re-announce
// the current number. Ticket state is untouched.
func (f *QueueFlowImpl) Repeat(ctx context.Context, loketID uint, metadata *ClientMetadata) (*dto.LoketDTO, error) {
	var updated models.Loket

	err := withRetry(ctx, f.db, func(txCtx context.Context) error {
		locked, err := f.lockLoket(txCtx, loketID)
		if err != nil {
			return err
		}

		locked.LastRepeatAt = utils.UTCNowPtr()
		locked.UpdatedAt = utils.UTCNow()
		if err := f.loketRepo.Update(txCtx, locked); err != nil {
			return err
		}

		updated = *locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateLoketCache(ctx, f.rc, loketID)

	result := ToLoketDTO(updated)
	return &result, nil
}
