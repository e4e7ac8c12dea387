package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinica/internal/domain/session"
	"clinica/internal/infrastructure/persistence/models"
	"clinica/internal/shared/errors"
)

// FingerprintRepository is the gorm-backed device fingerprint store.
type FingerprintRepository struct {
	db *gorm.DB
}

func NewFingerprintRepository(db *gorm.DB) session.FingerprintStore {
	return &FingerprintRepository{db: db}
}

func (r *FingerprintRepository) Upsert(ctx context.Context, fp *session.DeviceFingerprint) error {
	model := &models.DeviceFingerprintModel{
		DeviceID:  fp.DeviceID,
		UserID:    fp.UserID,
		Screen:    fp.Screen,
		Timezone:  fp.Timezone,
		Language:  fp.Language,
		Platform:  fp.Platform,
		FirstSeen: fp.FirstSeen,
		LastSeen:  fp.LastSeen,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "screen", "timezone", "language", "platform", "last_seen",
			}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert device fingerprint: %w", err)
	}
	return nil
}

func (r *FingerprintRepository) FindByDeviceID(ctx context.Context, deviceID string) (*session.DeviceFingerprint, error) {
	var model models.DeviceFingerprintModel
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("device fingerprint not found")
		}
		return nil, fmt.Errorf("failed to get device fingerprint: %w", err)
	}
	return &session.DeviceFingerprint{
		DeviceID:  model.DeviceID,
		UserID:    model.UserID,
		Screen:    model.Screen,
		Timezone:  model.Timezone,
		Language:  model.Language,
		Platform:  model.Platform,
		FirstSeen: model.FirstSeen,
		LastSeen:  model.LastSeen,
	}, nil
}
