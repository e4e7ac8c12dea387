// Package cache holds the in-process session cache, the authoritative fast
// tier in front of the durable store.
package cache

import (
	"sync"
	"time"

	"clinica/internal/domain/session"
)

// SessionCache is a thread-safe in-memory map of sessions keyed by session ID.
// It is accessed concurrently by request-path calls and the janitor; callers
// always receive clones, never the cached record itself.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	byUser   map[string]map[string]struct{}
}

func NewSessionCache() *SessionCache {
	return &SessionCache{
		sessions: make(map[string]*session.Session),
		byUser:   make(map[string]map[string]struct{}),
	}
}

// Put stores a copy of the session.
func (c *SessionCache) Put(s *session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.sessions[s.ID]; ok && old.UserID != s.UserID {
		c.unindexLocked(old)
	}
	c.sessions[s.ID] = s.Clone()
	ids, ok := c.byUser[s.UserID]
	if !ok {
		ids = make(map[string]struct{})
		c.byUser[s.UserID] = ids
	}
	ids[s.ID] = struct{}{}
}

// Get returns a copy of the cached session, or nil if absent.
func (c *SessionCache) Get(id string) *session.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.sessions[id]; ok {
		return s.Clone()
	}
	return nil
}

// Update applies fn to the cached record under the write lock. It reports
// whether the record was present.
func (c *SessionCache) Update(id string, fn func(*session.Session)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return false
	}
	fn(s)
	return true
}

// Delete removes the session from the cache. Absent IDs are a no-op.
func (c *SessionCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[id]; ok {
		c.unindexLocked(s)
		delete(c.sessions, id)
	}
}

// ListByUser returns copies of all cached sessions for a user.
func (c *SessionCache) ListByUser(userID string) []*session.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.byUser[userID]
	out := make([]*session.Session, 0, len(ids))
	for id := range ids {
		if s, ok := c.sessions[id]; ok {
			out = append(out, s.Clone())
		}
	}
	return out
}

// Len returns the number of cached sessions.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Sweep evicts every record that is expired at now or already inactive, and
// returns how many were removed.
func (c *SessionCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for id, s := range c.sessions {
		if !s.IsActive || s.IsExpired(now) {
			c.unindexLocked(s)
			delete(c.sessions, id)
			removed++
		}
	}
	return removed
}

func (c *SessionCache) unindexLocked(s *session.Session) {
	if ids, ok := c.byUser[s.UserID]; ok {
		delete(ids, s.ID)
		if len(ids) == 0 {
			delete(c.byUser, s.UserID)
		}
	}
}
