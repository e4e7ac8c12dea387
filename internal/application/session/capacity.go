package session

import (
	"context"
	"sort"

	domain "clinica/internal/domain/session"
	"clinica/internal/shared/logger"
)

// CapacityEnforcer bounds concurrently active sessions per user by evicting
// least-recently-active sessions. It runs before the new record is inserted,
// so the bound holds the moment CreateSession returns.
type CapacityEnforcer struct {
	store       *RecordStore
	maxSessions int
	logger      logger.Interface
}

func NewCapacityEnforcer(store *RecordStore, maxSessions int, log logger.Interface) *CapacityEnforcer {
	return &CapacityEnforcer{
		store:       store,
		maxSessions: maxSessions,
		logger:      log,
	}
}

// Enforce evicts oldest-activity sessions until one slot is free for the
// session about to be created. It returns the evicted sessions so the caller
// can emit termination events.
func (e *CapacityEnforcer) Enforce(ctx context.Context, userID string) []*domain.Session {
	if e.maxSessions <= 0 {
		return nil
	}

	active := e.store.ListActiveByUser(ctx, userID)
	if len(active) < e.maxSessions {
		return nil
	}

	sortForEviction(active)

	// Evict until count < max so the insert that follows keeps the bound.
	evictCount := len(active) - e.maxSessions + 1
	evicted := make([]*domain.Session, 0, evictCount)
	for i := 0; i < evictCount; i++ {
		victim := active[i]
		e.store.MarkInactive(ctx, victim.ID)
		evicted = append(evicted, victim)
		e.logger.Infow("session evicted by capacity limit",
			"user_id", userID,
			"session_id", victim.ID,
			"last_activity", victim.LastActivity,
		)
	}
	return evicted
}

// sortForEviction orders sessions least-recently-active first with a
// deterministic tie-break: lastActivity asc, createdAt asc, then session ID
// lexicographic. Identical inputs always evict the same session.
func sortForEviction(sessions []*domain.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.LastActivity.Equal(b.LastActivity) {
			return a.LastActivity.Before(b.LastActivity)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
