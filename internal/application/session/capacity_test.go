package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domain "clinica/internal/domain/session"
)

func evictionSession(id string, lastActivity, createdAt time.Time) *domain.Session {
	return &domain.Session{
		ID:           id,
		UserID:       "u-1",
		IsActive:     true,
		LastActivity: lastActivity,
		CreatedAt:    createdAt,
	}
}

func TestSortForEviction(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		sessions  []*domain.Session
		wantFirst string
	}{
		{
			name: "oldest activity first",
			sessions: []*domain.Session{
				evictionSession("b", base.Add(time.Hour), base),
				evictionSession("a", base, base),
			},
			wantFirst: "a",
		},
		{
			name: "activity tie broken by createdAt",
			sessions: []*domain.Session{
				evictionSession("b", base, base.Add(time.Minute)),
				evictionSession("a", base, base),
			},
			wantFirst: "a",
		},
		{
			name: "full tie broken by session ID",
			sessions: []*domain.Session{
				evictionSession("zzz", base, base),
				evictionSession("aaa", base, base),
			},
			wantFirst: "aaa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sortForEviction(tt.sessions)
			assert.Equal(t, tt.wantFirst, tt.sessions[0].ID)

			// Determinism: sorting a permutation yields the same order.
			reversed := make([]*domain.Session, len(tt.sessions))
			for i, s := range tt.sessions {
				reversed[len(tt.sessions)-1-i] = s
			}
			sortForEviction(reversed)
			assert.Equal(t, tt.wantFirst, reversed[0].ID)
		})
	}
}
