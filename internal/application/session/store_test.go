package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "clinica/internal/domain/session"
	"clinica/internal/infrastructure/cache"
	"clinica/internal/shared/errors"
	"clinica/internal/shared/logger"
)

func newRecordStoreEnv(t *testing.T) (*RecordStore, *cache.SessionCache, *fakeDurableStore) {
	t.Helper()
	c := cache.NewSessionCache()
	durable := newFakeDurableStore()
	return NewRecordStore(c, durable, logger.NewNopLogger()), c, durable
}

func mustNewSession(t *testing.T, userID string) *domain.Session {
	t.Helper()
	s, err := domain.New(userID, testIP, testUA, 8*time.Hour, time.Now().UTC())
	require.NoError(t, err)
	return s
}

func TestRecordStoreCreateIsCacheSynchronous(t *testing.T) {
	rs, c, durable := newRecordStoreEnv(t)
	s := mustNewSession(t, "u-1")

	rs.Create(context.Background(), s)

	// Cache write happens before Create returns.
	require.NotNil(t, c.Get(s.ID))

	// Durable persistence is write-behind.
	assert.Eventually(t, func() bool {
		_, err := durable.FindByID(context.Background(), s.ID)
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestRecordStoreReadThrough(t *testing.T) {
	rs, c, durable := newRecordStoreEnv(t)
	s := mustNewSession(t, "u-1")

	// Present only in the durable tier, as after a process restart.
	require.NoError(t, durable.Upsert(context.Background(), s))

	got, err := rs.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	// The miss repopulated the cache.
	assert.NotNil(t, c.Get(s.ID))
}

func TestRecordStoreGetNotFound(t *testing.T) {
	rs, _, _ := newRecordStoreEnv(t)

	_, err := rs.Get(context.Background(), "absent")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRecordStoreMarkInactiveIdempotent(t *testing.T) {
	rs, c, _ := newRecordStoreEnv(t)
	s := mustNewSession(t, "u-1")
	rs.Create(context.Background(), s)

	rs.MarkInactive(context.Background(), s.ID)
	got := c.Get(s.ID)
	require.NotNil(t, got, "terminated sessions stay cached until the janitor reclaims them")
	assert.False(t, got.IsActive)

	// Repeat and absent-ID calls are no-ops.
	rs.MarkInactive(context.Background(), s.ID)
	rs.MarkInactive(context.Background(), "absent")
	assert.False(t, c.Get(s.ID).IsActive)
}

func TestRecordStoreListActiveByUserMergesTiers(t *testing.T) {
	rs, c, durable := newRecordStoreEnv(t)

	cachedOnly := mustNewSession(t, "u-1")
	c.Put(cachedOnly)

	durableOnly := mustNewSession(t, "u-1")
	require.NoError(t, durable.Upsert(context.Background(), durableOnly))

	// Present in both tiers with diverging state: the cache must win.
	conflicted := mustNewSession(t, "u-1")
	stale := conflicted.Clone()
	require.NoError(t, durable.Upsert(context.Background(), stale))
	conflicted.Deactivate()
	c.Put(conflicted)

	got := rs.ListActiveByUser(context.Background(), "u-1")
	ids := make(map[string]bool, len(got))
	for _, s := range got {
		ids[s.ID] = true
	}

	assert.Len(t, got, 2)
	assert.True(t, ids[cachedOnly.ID])
	assert.True(t, ids[durableOnly.ID])
	assert.False(t, ids[conflicted.ID], "cache-inactive session must not be resurrected by a stale durable row")
}
