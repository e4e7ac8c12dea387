package session

import "time"

// EventType identifies a security event emitted by the lifecycle service.
type EventType string

const (
	EventSessionCreated    EventType = "session_created"
	EventSessionTerminated EventType = "session_terminated"
	EventIPChange          EventType = "ip_change"
	EventSuspiciousLogin   EventType = "suspicious_login"
	EventSessionLimit      EventType = "session_limit"
)

// Event is an append-only security event. Emission is fire-and-forget;
// sink failures are logged, never propagated.
type Event struct {
	UserID    string
	Type      EventType
	Timestamp time.Time
	Metadata  map[string]string
}
