package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"clinica/internal/shared/useragent"
)

// SecurityFlags are mutable annotations on a session. They inform the
// caller's step-up-auth decision but never invalidate a session on their own.
type SecurityFlags struct {
	IsSecure           bool `json:"is_secure"`
	IsTrusted          bool `json:"is_trusted"`
	RequiresReauth     bool `json:"requires_reauth"`
	SuspiciousActivity bool `json:"suspicious_activity"`
}

// Location is a best-effort geographic annotation derived from the IP.
type Location struct {
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

// Session is a bounded-lifetime authorization context bound to one user and
// one device/IP pairing. Once IsActive goes false it never comes back; a new
// login always mints a new session ID.
type Session struct {
	ID           string
	UserID       string
	DeviceID     string
	IPAddress    string
	UserAgent    string
	Device       useragent.DeviceInfo
	Location     *Location
	Flags        SecurityFlags
	IsActive     bool
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
}

// New constructs an active session stamped at now, so one clock governs
// CreatedAt, LastActivity and ExpiresAt. ttl must be positive so that
// ExpiresAt > CreatedAt always holds.
func New(userID, ipAddress, userAgent string, ttl time.Duration, now time.Time) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if ipAddress == "" {
		return nil, fmt.Errorf("IP address is required")
	}
	if userAgent == "" {
		return nil, fmt.Errorf("user agent is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}

	id, err := generateID(now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	return &Session{
		ID:           id,
		UserID:       userID,
		DeviceID:     DeviceID(userAgent, ipAddress),
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		Device:       useragent.Parse(userAgent),
		IsActive:     true,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(ttl),
	}, nil
}

// IsExpired reports whether the session is past its absolute expiry at t.
func (s *Session) IsExpired(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// IdleFor returns how long the session has been without activity at t.
func (s *Session) IdleFor(t time.Time) time.Duration {
	return t.Sub(s.LastActivity)
}

// Touch bumps LastActivity. LastActivity is non-decreasing while active.
func (s *Session) Touch(t time.Time) {
	if t.After(s.LastActivity) {
		s.LastActivity = t
	}
}

// Deactivate flips the session inactive. The transition is one-way.
func (s *Session) Deactivate() {
	s.IsActive = false
}

// Clone returns a deep copy so cached records can be handed out without
// exposing shared mutable state.
func (s *Session) Clone() *Session {
	c := *s
	if s.Location != nil {
		loc := *s.Location
		c.Location = &loc
	}
	return &c
}

// DeviceID derives the correlation hash shared by sessions from the same
// browser/IP pairing. It is not a security boundary.
func DeviceID(userAgent, ipAddress string) string {
	sum := sha256.Sum256([]byte(userAgent + "|" + ipAddress))
	return hex.EncodeToString(sum[:16])
}

// generateID produces an opaque, unguessable session ID: 16 random bytes
// hashed together with a nanosecond timestamp salt.
func generateID(now time.Time) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(b)
	h.Write([]byte(strconv.FormatInt(now.UnixNano(), 10)))
	return hex.EncodeToString(h.Sum(nil)), nil
}
