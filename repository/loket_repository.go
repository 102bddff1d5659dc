package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/antrian-id/antrian-loket/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoketRepositoryImpl implements LoketRepository interface
type LoketRepositoryImpl struct {
	*BaseRepository[models.Loket, models.LoketFilter]
}

// NewLoketRepository creates a new loket repository
func NewLoketRepository(db *gorm.DB) LoketRepository {
	return &LoketRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Loket, models.LoketFilter](db),
	}
}

// ByIDForUpdate loads a loket with SELECT ... FOR UPDATE so that concurrent
// queue operations on the same loket serialize on its row. Requires an open
// transaction in ctx; without one the lock would be released immediately.
func (r *LoketRepositoryImpl) ByIDForUpdate(ctx context.Context, id uint) (*models.Loket, error) {
	tx, ok := ctx.Value(TxContextKey).(*gorm.DB)
	if !ok || tx == nil {
		return nil, fmt.Errorf("ByIDForUpdate requires a transaction in context")
	}

	var row models.Loket
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ByEventAndID retrieves a loket scoped to its event
func (r *LoketRepositoryImpl) ByEventAndID(ctx context.Context, eventID, id uint) (*models.Loket, error) {
	db := r.getDB(ctx)
	var row models.Loket
	err := db.Where("id = ? AND event_id = ?", id, eventID).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListByEvent lists lokets of an event in listing order
func (r *LoketRepositoryImpl) ListByEvent(ctx context.Context, eventID uint) ([]*models.Loket, error) {
	return r.ByFilter(ctx, models.LoketFilter{EventID: &eventID}, "id ASC", 0, 0)
}

// Update persists changes to an existing loket
func (r *LoketRepositoryImpl) Update(ctx context.Context, loket *models.Loket) error {
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

	// Save alone skips nil pointer columns on updates, so clearing
	// current_number or last_repeat_at would be lost without Select.
	err = db.Model(loket).Select("name", "code", "description", "current_number",
		"last_ticket_number", "last_repeat_at", "updated_at").Updates(loket).Error
	return err
}

// Delete removes a loket by ID
func (r *LoketRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	err = db.Delete(&models.Loket{}, id).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *LoketRepositoryImpl) applyFilter(query *gorm.DB, filter models.LoketFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Code != nil {
		query = query.Where("code = ?", *filter.Code)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves lokets based on filter criteria
func (r *LoketRepositoryImpl) ByFilter(ctx context.Context, filter models.LoketFilter, orderBy string, limit, offset int) ([]*models.Loket, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Loket{})

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

	var rows []*models.Loket
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of lokets matching filter
func (r *LoketRepositoryImpl) Count(ctx context.Context, filter models.LoketFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Loket{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any loket matches the filter
func (r *LoketRepositoryImpl) Exists(ctx context.Context, filter models.LoketFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
