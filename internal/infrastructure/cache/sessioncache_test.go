package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinica/internal/domain/session"
)

func newTestSession(t *testing.T, userID string, ttl time.Duration) *session.Session {
	t.Helper()
	s, err := session.New(userID, "203.0.113.7", "Mozilla/5.0 Chrome/120.0", ttl, time.Now().UTC())
	require.NoError(t, err)
	return s
}

func TestPutGetReturnsCopy(t *testing.T) {
	c := NewSessionCache()
	s := newTestSession(t, "u-1", time.Hour)
	c.Put(s)

	got := c.Get(s.ID)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)

	// Mutating the returned copy must not leak into the cache.
	got.Flags.SuspiciousActivity = true
	again := c.Get(s.ID)
	assert.False(t, again.Flags.SuspiciousActivity)
}

func TestGetMissing(t *testing.T) {
	c := NewSessionCache()
	assert.Nil(t, c.Get("absent"))
}

func TestUpdate(t *testing.T) {
	c := NewSessionCache()
	s := newTestSession(t, "u-1", time.Hour)
	c.Put(s)

	ok := c.Update(s.ID, func(cached *session.Session) {
		cached.Flags.RequiresReauth = true
	})
	assert.True(t, ok)
	assert.True(t, c.Get(s.ID).Flags.RequiresReauth)

	assert.False(t, c.Update("absent", func(*session.Session) {}))
}

func TestListByUser(t *testing.T) {
	c := NewSessionCache()
	s1 := newTestSession(t, "u-1", time.Hour)
	s2 := newTestSession(t, "u-1", time.Hour)
	s3 := newTestSession(t, "u-2", time.Hour)
	c.Put(s1)
	c.Put(s2)
	c.Put(s3)

	got := c.ListByUser("u-1")
	assert.Len(t, got, 2)
	assert.Len(t, c.ListByUser("u-2"), 1)
	assert.Empty(t, c.ListByUser("u-3"))
}

func TestDeleteIsIdempotent(t *testing.T) {
	c := NewSessionCache()
	s := newTestSession(t, "u-1", time.Hour)
	c.Put(s)

	c.Delete(s.ID)
	assert.Nil(t, c.Get(s.ID))
	assert.Empty(t, c.ListByUser("u-1"))

	c.Delete(s.ID) // no-op
	assert.Equal(t, 0, c.Len())
}

func TestSweep(t *testing.T) {
	c := NewSessionCache()
	live := newTestSession(t, "u-1", time.Hour)
	expired := newTestSession(t, "u-1", time.Minute)
	inactive := newTestSession(t, "u-2", time.Hour)
	inactive.Deactivate()

	c.Put(live)
	c.Put(expired)
	c.Put(inactive)

	removed := c.Sweep(time.Now().UTC().Add(2 * time.Minute))
	assert.Equal(t, 2, removed)
	assert.NotNil(t, c.Get(live.ID))
	assert.Nil(t, c.Get(expired.ID))
	assert.Nil(t, c.Get(inactive.ID))
}
