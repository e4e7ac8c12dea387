package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"clinica/internal/domain/session"
	"clinica/internal/infrastructure/persistence/models"
)

// SecurityEventRepository is the gorm-backed security event sink.
type SecurityEventRepository struct {
	db *gorm.DB
}

func NewSecurityEventRepository(db *gorm.DB) session.EventSink {
	return &SecurityEventRepository{db: db}
}

func (r *SecurityEventRepository) Append(ctx context.Context, ev session.Event) error {
	metadata := ""
	if len(ev.Metadata) > 0 {
		data, err := json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal event metadata: %w", err)
		}
		metadata = string(data)
	}

	model := &models.SecurityEventModel{
		UserID:    ev.UserID,
		EventType: string(ev.Type),
		Metadata:  metadata,
		CreatedAt: ev.Timestamp,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append security event: %w", err)
	}
	return nil
}
