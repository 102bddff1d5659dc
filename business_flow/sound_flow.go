package businessflow

import (
	"context"

	"github.com/antrian-id/antrian-loket/app/dto"
	"github.com/antrian-id/antrian-loket/models"
	"github.com/antrian-id/antrian-loket/repository"
	"gorm.io/gorm"
)

// SoundFlow manages per-event sound source preferences for display pages
type SoundFlow interface {
	GetSoundConfig(ctx context.Context, eventID uint, role string) (*dto.SoundConfigDTO, error)
	UpdateSoundConfig(ctx context.Context, eventID uint, req *dto.UpdateSoundConfigRequest, metadata *ClientMetadata) (*dto.SoundConfigAllDTO, error)
}

// SoundFlowImpl implements SoundFlow
type SoundFlowImpl struct {
	eventRepo repository.EventRepository
	soundRepo repository.SoundSourceRepository
	db        *gorm.DB
}

func NewSoundFlow(eventRepo repository.EventRepository, soundRepo repository.SoundSourceRepository, db *gorm.DB) SoundFlow {
	return &SoundFlowImpl{eventRepo: eventRepo, soundRepo: soundRepo, db: db}
}

var soundRoles = []string{
	models.SoundRoleMultiDisplay,
	models.SoundRoleMultiDisplayLED,
	models.SoundRoleLoketDisplay,
	models.SoundRoleLoketDisplayLED,
	models.SoundRoleLoketAdmin,
}

func validSoundRole(role string) bool {
	for _, r := range soundRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (f *SoundFlowImpl) GetSoundConfig(ctx context.Context, eventID uint, role string) (*dto.SoundConfigDTO, error) {
	if !validSoundRole(role) {
		return nil, ErrInvalidSoundRole
	}
	if _, err := getEvent(ctx, f.eventRepo, eventID); err != nil {
		return nil, err
	}

	record, err := f.soundRepo.ByEventAndRole(ctx, eventID, role)
	if err != nil {
		return nil, NewBusinessError("GET_SOUND_CONFIG_FAILED", "Failed to load sound config", err)
	}

	enabled := models.DefaultSoundEnabled(role)
	if record != nil {
		enabled = record.Enabled
	}

	return &dto.SoundConfigDTO{
		EventID: eventID,
		Role:    role,
		Enabled: enabled,
	}, nil
}

func (f *SoundFlowImpl) UpdateSoundConfig(ctx context.Context, eventID uint, req *dto.UpdateSoundConfigRequest, metadata *ClientMetadata) (*dto.SoundConfigAllDTO, error) {
	roleMap := map[string]bool{
		models.SoundRoleMultiDisplay:    req.MultiDisplay,
		models.SoundRoleMultiDisplayLED: req.MultiDisplayLED,
		models.SoundRoleLoketDisplay:    req.LoketDisplay,
		models.SoundRoleLoketDisplayLED: req.LoketDisplayLED,
		models.SoundRoleLoketAdmin:      req.LoketAdmin,
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if _, err := getEvent(txCtx, f.eventRepo, eventID); err != nil {
			return err
		}
		// Deterministic order keeps upserts deadlock-free across callers
		for _, role := range soundRoles {
			source := &models.SoundSource{
				EventID: eventID,
				Role:    role,
				Enabled: roleMap[role],
			}
			if err := f.soundRepo.Upsert(txCtx, source); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.SoundConfigAllDTO{
		EventID:         eventID,
		MultiDisplay:    req.MultiDisplay,
		MultiDisplayLED: req.MultiDisplayLED,
		LoketDisplay:    req.LoketDisplay,
		LoketDisplayLED: req.LoketDisplayLED,
		LoketAdmin:      req.LoketAdmin,
	}, nil
}
