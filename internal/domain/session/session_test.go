package session

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		userID  string
		ip      string
		ua      string
		ttl     time.Duration
		wantErr bool
	}{
		{
			name:   "valid session",
			userID: "u-1",
			ip:     "203.0.113.7",
			ua:     "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0",
			ttl:    8 * time.Hour,
		},
		{
			name:    "empty user ID rejected",
			ip:      "203.0.113.7",
			ua:      "Mozilla/5.0",
			ttl:     time.Hour,
			wantErr: true,
		},
		{
			name:    "empty IP rejected",
			userID:  "u-1",
			ua:      "Mozilla/5.0",
			ttl:     time.Hour,
			wantErr: true,
		},
		{
			name:    "empty user agent rejected",
			userID:  "u-1",
			ip:      "203.0.113.7",
			ttl:     time.Hour,
			wantErr: true,
		},
		{
			name:    "non-positive ttl rejected",
			userID:  "u-1",
			ip:      "203.0.113.7",
			ua:      "Mozilla/5.0",
			ttl:     0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.userID, tt.ip, tt.ua, tt.ttl, now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !s.IsActive {
				t.Error("new session should be active")
			}
			if !s.CreatedAt.Equal(now) {
				t.Errorf("CreatedAt should be the passed timestamp, got %v", s.CreatedAt)
			}
			if !s.LastActivity.Equal(now) {
				t.Errorf("LastActivity should be the passed timestamp, got %v", s.LastActivity)
			}
			if !s.ExpiresAt.Equal(now.Add(tt.ttl)) {
				t.Errorf("ExpiresAt should be CreatedAt+ttl, got %v", s.ExpiresAt)
			}
			if s.ID == "" || len(s.ID) != 64 {
				t.Errorf("session ID should be 64 hex chars, got %q", s.ID)
			}
			if s.DeviceID != DeviceID(tt.ua, tt.ip) {
				t.Error("DeviceID not derived from user agent and IP")
			}
		})
	}
}

func TestGenerateIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s, err := New("u-1", "203.0.113.7", "Mozilla/5.0", time.Hour, time.Now().UTC())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[s.ID] {
			t.Fatalf("duplicate session ID generated: %s", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestTouchNonDecreasing(t *testing.T) {
	s, err := New("u-1", "203.0.113.7", "Mozilla/5.0", time.Hour, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := s.LastActivity

	s.Touch(before.Add(-time.Minute))
	if !s.LastActivity.Equal(before) {
		t.Error("Touch with an earlier time must not move LastActivity backwards")
	}

	later := before.Add(time.Minute)
	s.Touch(later)
	if !s.LastActivity.Equal(later) {
		t.Error("Touch with a later time should advance LastActivity")
	}
}

func TestDeactivateIsTerminal(t *testing.T) {
	s, err := New("u-1", "203.0.113.7", "Mozilla/5.0", time.Hour, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Deactivate()
	if s.IsActive {
		t.Error("Deactivate should flip IsActive to false")
	}
	s.Deactivate()
	if s.IsActive {
		t.Error("second Deactivate must leave the session inactive")
	}
}

func TestIsExpired(t *testing.T) {
	s, err := New("u-1", "203.0.113.7", "Mozilla/5.0", time.Minute, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsExpired(s.CreatedAt.Add(30 * time.Second)) {
		t.Error("session should not be expired before ExpiresAt")
	}
	if !s.IsExpired(s.CreatedAt.Add(61 * time.Second)) {
		t.Error("session should be expired after ExpiresAt")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s, err := New("u-1", "203.0.113.7", "Mozilla/5.0", time.Hour, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Location = &Location{City: "Lisbon", Country: "PT"}

	c := s.Clone()
	c.Flags.SuspiciousActivity = true
	c.Location.City = "Porto"

	if s.Flags.SuspiciousActivity {
		t.Error("mutating the clone's flags must not affect the original")
	}
	if s.Location.City != "Lisbon" {
		t.Error("mutating the clone's location must not affect the original")
	}
}
