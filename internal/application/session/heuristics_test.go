package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "clinica/internal/domain/session"
	"clinica/internal/infrastructure/cache"
	"clinica/internal/shared/logger"
)

func newHeuristicsEnv(t *testing.T, burstThreshold int) (*Heuristics, *RecordStore, *testClock) {
	t.Helper()
	cfg := defaultTestConfig()
	cfg.CreationBurstThreshold = burstThreshold
	store := NewRecordStore(cache.NewSessionCache(), newFakeDurableStore(), logger.NewNopLogger())
	clock := &testClock{}
	h := NewHeuristics(store, cfg, logger.NewNopLogger(), clock.Now)
	return h, store, clock
}

func seedActiveSession(t *testing.T, store *RecordStore, userID, ip string) {
	t.Helper()
	s, err := domain.New(userID, ip, testUA, 8*time.Hour, time.Now().UTC())
	require.NoError(t, err)
	store.Create(context.Background(), s)
}

func TestDetectAtCreationFirstLogin(t *testing.T) {
	h, _, _ := newHeuristicsEnv(t, 3)

	got := h.DetectAtCreation(context.Background(), "u-1", testIP)
	assert.False(t, got.Suspicious, "a user with no sessions has nothing to compare against")
}

func TestDetectAtCreationBurst(t *testing.T) {
	h, _, _ := newHeuristicsEnv(t, 3)

	// The first three creations sit below the threshold.
	for i := 0; i < 3; i++ {
		got := h.DetectAtCreation(context.Background(), "u-1", testIP)
		assert.False(t, got.Suspicious, "creation %d should be below the burst threshold", i+1)
	}

	got := h.DetectAtCreation(context.Background(), "u-1", testIP)
	assert.True(t, got.Suspicious)
	assert.Contains(t, got.Reasons, "creation_burst")
}

func TestDetectAtCreationBurstWindowExpires(t *testing.T) {
	h, _, clock := newHeuristicsEnv(t, 3)

	for i := 0; i < 4; i++ {
		h.DetectAtCreation(context.Background(), "u-1", testIP)
	}

	// All earlier creations fall out of the trailing window.
	clock.Advance(6 * time.Minute)

	got := h.DetectAtCreation(context.Background(), "u-1", testIP)
	assert.False(t, got.Suspicious)
}

func TestDetectAtCreationBurstIndependentOfActiveSessions(t *testing.T) {
	// The creation log outlives the sessions themselves: with no session
	// stored at all (as after forced logout or capacity eviction) a rapid
	// series of creations must still trip the burst signal.
	h, store, _ := newHeuristicsEnv(t, 3)

	for i := 0; i < 3; i++ {
		h.DetectAtCreation(context.Background(), "u-1", testIP)
	}
	require.Empty(t, store.ListActiveByUser(context.Background(), "u-1"))

	got := h.DetectAtCreation(context.Background(), "u-1", testIP)
	assert.True(t, got.Suspicious)
	assert.Contains(t, got.Reasons, "creation_burst")
}

func TestDetectAtCreationUnfamiliarNetwork(t *testing.T) {
	h, store, _ := newHeuristicsEnv(t, 100)

	seedActiveSession(t, store, "u-1", "203.0.113.7")
	seedActiveSession(t, store, "u-1", "203.0.40.9")

	// Same /16 as an existing session: familiar.
	got := h.DetectAtCreation(context.Background(), "u-1", "203.0.99.99")
	assert.False(t, got.Suspicious)

	// No active session shares the first two octets.
	got = h.DetectAtCreation(context.Background(), "u-1", "198.51.100.9")
	assert.True(t, got.Suspicious)
	assert.Contains(t, got.Reasons, "unfamiliar_network")
}

func TestNetworkPrefix(t *testing.T) {
	tests := []struct {
		ip   string
		want string
	}{
		{"203.0.113.7", "203.0"},
		{"10.1.2.3", "10.1"},
		{"2001:db8::1", "2001:db8::1"},
		{"not-an-ip", "not-an-ip"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, networkPrefix(tt.ip), "networkPrefix(%q)", tt.ip)
	}
}
