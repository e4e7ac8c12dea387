package session

import (
	"context"

	domain "clinica/internal/domain/session"
	"clinica/internal/infrastructure/cache"
	"clinica/internal/shared/errors"
	"clinica/internal/shared/goroutine"
	"clinica/internal/shared/logger"
)

// RecordStore bridges the authoritative in-memory cache and the durable
// store. Cache writes are synchronous; durable persistence is write-behind
// and best-effort, so a crash between the two loses the session and the user
// re-establishes it by logging in again. The trade is request-path latency
// over strict durability.
type RecordStore struct {
	cache   *cache.SessionCache
	durable domain.Store
	logger  logger.Interface
}

func NewRecordStore(c *cache.SessionCache, durable domain.Store, log logger.Interface) *RecordStore {
	return &RecordStore{
		cache:   c,
		durable: durable,
		logger:  log,
	}
}

// Create writes the record to the cache synchronously and dispatches the
// durable upsert in the background. Durable failures are logged, never
// surfaced to the caller.
func (rs *RecordStore) Create(ctx context.Context, s *domain.Session) {
	rs.cache.Put(s)

	record := s.Clone()
	goroutine.SafeGo(rs.logger, "session-durable-create", func() {
		if err := rs.durable.Upsert(context.WithoutCancel(ctx), record); err != nil {
			rs.logger.Errorw("failed to persist session",
				"session_id", record.ID,
				"user_id", record.UserID,
				"error", err,
			)
		}
	})
}

// Get is cache-first; on a miss it attempts a single durable read-through
// and repopulates the cache. A not-found error means neither tier has it.
func (rs *RecordStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if s := rs.cache.Get(id); s != nil {
		return s, nil
	}

	s, err := rs.durable.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, err
		}
		rs.logger.Warnw("durable session lookup failed", "session_id", id, "error", err)
		return nil, errors.NewNotFoundError("session not found")
	}

	rs.cache.Put(s)
	return s.Clone(), nil
}

// UpdateFields applies mutate to the cached record if present and propagates
// the corresponding column map to the durable store asynchronously.
func (rs *RecordStore) UpdateFields(ctx context.Context, id string, mutate func(*domain.Session), fields map[string]any) {
	rs.cache.Update(id, mutate)

	goroutine.SafeGo(rs.logger, "session-durable-update", func() {
		if err := rs.durable.UpdateFields(context.WithoutCancel(ctx), id, fields); err != nil {
			if errors.IsNotFoundError(err) {
				// Write-behind create may not have landed yet; next update wins.
				rs.logger.Debugw("durable update skipped, session row absent", "session_id", id)
				return
			}
			rs.logger.Errorw("failed to propagate session update",
				"session_id", id,
				"error", err,
			)
		}
	})
}

// MarkInactive flips the session inactive in both tiers. Idempotent: absent
// or already-inactive sessions are a silent no-op. The record stays in the
// cache until the janitor reclaims it, so the cache remains the fresher tier
// while the durable write-behind catches up.
func (rs *RecordStore) MarkInactive(ctx context.Context, id string) {
	present := rs.cache.Update(id, func(s *domain.Session) {
		s.Deactivate()
	})
	if !present {
		rs.logger.Debugw("markInactive on uncached session", "session_id", id)
	}

	goroutine.SafeGo(rs.logger, "session-durable-deactivate", func() {
		err := rs.durable.UpdateFields(context.WithoutCancel(ctx), id, map[string]any{"is_active": false})
		if err != nil && !errors.IsNotFoundError(err) {
			rs.logger.Errorw("failed to deactivate session in durable store",
				"session_id", id,
				"error", err,
			)
		}
	})
}

// ListActiveByUser merges cache and durable results, de-duplicated by
// session ID with the cache winning on conflict, then filters to active
// records.
func (rs *RecordStore) ListActiveByUser(ctx context.Context, userID string) []*domain.Session {
	cached := rs.cache.ListByUser(userID)
	byID := make(map[string]*domain.Session, len(cached))
	for _, s := range cached {
		byID[s.ID] = s
	}

	durable, err := rs.durable.FindActiveByUser(ctx, userID)
	if err != nil {
		rs.logger.Warnw("durable active-session listing failed, serving cache only",
			"user_id", userID,
			"error", err,
		)
	}
	for _, s := range durable {
		if _, ok := byID[s.ID]; !ok {
			byID[s.ID] = s
		}
	}

	out := make([]*domain.Session, 0, len(byID))
	for _, s := range byID {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}
