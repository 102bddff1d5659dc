package repository

import (
	"context"
	"errors"

	"github.com/antrian-id/antrian-loket/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SoundSourceRepositoryImpl implements SoundSourceRepository interface
type SoundSourceRepositoryImpl struct {
	*BaseRepository[models.SoundSource, models.SoundSourceFilter]
}

// NewSoundSourceRepository creates a new sound source repository
func NewSoundSourceRepository(db *gorm.DB) SoundSourceRepository {
	return &SoundSourceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SoundSource, models.SoundSourceFilter](db),
	}
}

// ByEventAndRole retrieves the preference record for one event and role
func (r *SoundSourceRepositoryImpl) ByEventAndRole(ctx context.Context, eventID uint, role string) (*models.SoundSource, error) {
	db := r.getDB(ctx)
	var row models.SoundSource
	err := db.Where("event_id = ? AND role = ?", eventID, role).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Upsert inserts or updates the preference keyed by (event_id, role)
func (r *SoundSourceRepositoryImpl) Upsert(ctx context.Context, source *models.SoundSource) error {
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

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(source).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *SoundSourceRepositoryImpl) applyFilter(query *gorm.DB, filter models.SoundSourceFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}
	return query
}

// ByFilter retrieves sound sources based on filter criteria
func (r *SoundSourceRepositoryImpl) ByFilter(ctx context.Context, filter models.SoundSourceFilter, orderBy string, limit, offset int) ([]*models.SoundSource, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SoundSource{})

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

	var rows []*models.SoundSource
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of sound sources matching filter
func (r *SoundSourceRepositoryImpl) Count(ctx context.Context, filter models.SoundSourceFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SoundSource{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any sound source matches the filter
func (r *SoundSourceRepositoryImpl) Exists(ctx context.Context, filter models.SoundSourceFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
