package mappers

import (
	"clinica/internal/domain/session"
	"clinica/internal/infrastructure/persistence/models"
	"clinica/internal/shared/useragent"
)

// SessionMapper handles the conversion between Session domain entities and persistence models.
type SessionMapper interface {
	ToModel(entity *session.Session) *models.SessionModel
	ToDomain(model *models.SessionModel) *session.Session
}

type sessionMapper struct{}

// NewSessionMapper creates a new SessionMapper.
func NewSessionMapper() SessionMapper {
	return &sessionMapper{}
}

func (m *sessionMapper) ToModel(entity *session.Session) *models.SessionModel {
	if entity == nil {
		return nil
	}
	model := &models.SessionModel{
		ID:                 entity.ID,
		UserID:             entity.UserID,
		DeviceID:           entity.DeviceID,
		IPAddress:          entity.IPAddress,
		UserAgent:          entity.UserAgent,
		Browser:            entity.Device.Browser,
		OS:                 entity.Device.OS,
		DeviceClass:        entity.Device.DeviceClass,
		IsMobile:           entity.Device.IsMobile,
		IsSecure:           entity.Flags.IsSecure,
		IsTrusted:          entity.Flags.IsTrusted,
		RequiresReauth:     entity.Flags.RequiresReauth,
		SuspiciousActivity: entity.Flags.SuspiciousActivity,
		IsActive:           entity.IsActive,
		ExpiresAt:          entity.ExpiresAt,
		LastActivityAt:     entity.LastActivity,
		CreatedAt:          entity.CreatedAt,
	}
	if entity.Location != nil {
		model.LocationCity = entity.Location.City
		model.LocationRegion = entity.Location.Region
		model.LocationCountry = entity.Location.Country
	}
	return model
}

func (m *sessionMapper) ToDomain(model *models.SessionModel) *session.Session {
	if model == nil {
		return nil
	}
	entity := &session.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		DeviceID:  model.DeviceID,
		IPAddress: model.IPAddress,
		UserAgent: model.UserAgent,
		Device: useragent.DeviceInfo{
			Browser:     model.Browser,
			OS:          model.OS,
			DeviceClass: model.DeviceClass,
			IsMobile:    model.IsMobile,
		},
		Flags: session.SecurityFlags{
			IsSecure:           model.IsSecure,
			IsTrusted:          model.IsTrusted,
			RequiresReauth:     model.RequiresReauth,
			SuspiciousActivity: model.SuspiciousActivity,
		},
		IsActive:     model.IsActive,
		ExpiresAt:    model.ExpiresAt,
		LastActivity: model.LastActivityAt,
		CreatedAt:    model.CreatedAt,
	}
	if model.LocationCity != "" || model.LocationRegion != "" || model.LocationCountry != "" {
		entity.Location = &session.Location{
			City:    model.LocationCity,
			Region:  model.LocationRegion,
			Country: model.LocationCountry,
		}
	}
	return entity
}
