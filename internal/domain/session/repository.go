package session

import (
	"context"
	"time"
)

// Store is the durable session store collaborator. Implementations make no
// assumption about relational vs key-value backing.
type Store interface {
	Upsert(ctx context.Context, s *Session) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	FindByID(ctx context.Context, id string) (*Session, error)
	FindActiveByUser(ctx context.Context, userID string) ([]*Session, error)
	BulkDeactivateExpired(ctx context.Context, before time.Time) (int64, error)
}

// EventSink receives security events. Append is fire-and-forget from the
// caller's perspective; failures are logged and swallowed upstream.
type EventSink interface {
	Append(ctx context.Context, ev Event) error
}

// FingerprintStore persists device fingerprints when device tracking is on.
type FingerprintStore interface {
	Upsert(ctx context.Context, fp *DeviceFingerprint) error
	FindByDeviceID(ctx context.Context, deviceID string) (*DeviceFingerprint, error)
}

// LocationResolver maps an IP address to a best-effort location. The real
// geolocation lookup lives outside this subsystem; a nil result means unknown.
type LocationResolver interface {
	Resolve(ip string) *Location
}

// NopLocationResolver is the default resolver used when location tracking is
// disabled or no geo backend is wired.
type NopLocationResolver struct{}

func (NopLocationResolver) Resolve(string) *Location { return nil }
