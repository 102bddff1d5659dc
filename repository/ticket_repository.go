package repository

import (
	"context"
	"errors"

	"github.com/antrian-id/antrian-loket/models"
	"gorm.io/gorm"
)

// TicketRepositoryImpl implements TicketRepository interface
type TicketRepositoryImpl struct {
	*BaseRepository[models.Ticket, models.TicketFilter]
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &TicketRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Ticket, models.TicketFilter](db),
	}
}

// MinWaitingByLoket returns the waiting ticket with the smallest number for
// the loket, or nil when no ticket is waiting. Numbers are issued in creation
// order, so lowest number is the oldest request.
func (r *TicketRepositoryImpl) MinWaitingByLoket(ctx context.Context, loketID uint) (*models.Ticket, error) {
	db := r.getDB(ctx)
	var row models.Ticket
	err := db.Where("loket_id = ? AND status = ?", loketID, models.TicketStatusWaiting).
		Order("number ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ByLoketAndNumber retrieves the ticket carrying a specific number on a loket
func (r *TicketRepositoryImpl) ByLoketAndNumber(ctx context.Context, loketID uint, number int) (*models.Ticket, error) {
	db := r.getDB(ctx)
	var row models.Ticket
	err := db.Where("loket_id = ? AND number = ?", loketID, number).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// HoldNumbersByLoket lists the numbers currently on hold, ascending
func (r *TicketRepositoryImpl) HoldNumbersByLoket(ctx context.Context, loketID uint) ([]int, error) {
	db := r.getDB(ctx)
	var numbers []int
	err := db.Model(&models.Ticket{}).
		Where("loket_id = ? AND status = ?", loketID, models.TicketStatusHold).
		Order("number ASC").
		Pluck("number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// CountByLoketAndStatus counts tickets of one status on a loket
func (r *TicketRepositoryImpl) CountByLoketAndStatus(ctx context.Context, loketID uint, status models.TicketStatus) (int64, error) {
	return r.Count(ctx, models.TicketFilter{LoketID: &loketID, Status: &status})
}

// ListByLoket lists every ticket of a loket in issuance order
func (r *TicketRepositoryImpl) ListByLoket(ctx context.Context, loketID uint) ([]*models.Ticket, error) {
	return r.ByFilter(ctx, models.TicketFilter{LoketID: &loketID}, "number ASC", 0, 0)
}

// ListByEvent lists every ticket of an event, grouped by loket then number
func (r *TicketRepositoryImpl) ListByEvent(ctx context.Context, eventID uint) ([]*models.Ticket, error) {
	return r.ByFilter(ctx, models.TicketFilter{EventID: &eventID}, "loket_id ASC, number ASC", 0, 0)
}

// Update persists changes to an existing ticket
func (r *TicketRepositoryImpl) Update(ctx context.Context, ticket *models.Ticket) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(ticket).Select("status", "called_at").Updates(ticket).Error
	return err
}

// DeleteByLoket removes every ticket belonging to a loket, all statuses
func (r *TicketRepositoryImpl) DeleteByLoket(ctx context.Context, loketID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Where("loket_id = ?", loketID).Delete(&models.Ticket{}).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *TicketRepositoryImpl) applyFilter(query *gorm.DB, filter models.TicketFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.LoketID != nil {
		query = query.Where("loket_id = ?", *filter.LoketID)
	}
	if filter.Number != nil {
		query = query.Where("number = ?", *filter.Number)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves tickets based on filter criteria
func (r *TicketRepositoryImpl) ByFilter(ctx context.Context, filter models.TicketFilter, orderBy string, limit, offset int) ([]*models.Ticket, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Ticket{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Ticket
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of tickets matching filter
func (r *TicketRepositoryImpl) Count(ctx context.Context, filter models.TicketFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Ticket{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any ticket matches the filter
func (r *TicketRepositoryImpl) Exists(ctx context.Context, filter models.TicketFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
