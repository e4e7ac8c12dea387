// Package scheduler hosts periodic background maintenance tasks.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	domain "clinica/internal/domain/session"
	"clinica/internal/infrastructure/cache"
	"clinica/internal/shared/biztime"
	"clinica/internal/shared/logger"
)

// SessionJanitor periodically expires stale session records in both tiers:
// it evicts expired or inactive records from the in-memory cache and issues
// one bulk deactivation against the durable store. Runs never overlap; a
// tick that arrives while a sweep is still running is suppressed.
type SessionJanitor struct {
	cache    *cache.SessionCache
	durable  domain.Store
	logger   logger.Interface
	interval time.Duration
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

func NewSessionJanitor(
	c *cache.SessionCache,
	durable domain.Store,
	interval time.Duration,
	log logger.Interface,
) *SessionJanitor {
	return &SessionJanitor{
		cache:    c,
		durable:  durable,
		logger:   log,
		interval: interval,
		now:      biztime.NowUTC,
		stopChan: make(chan struct{}),
	}
}

// Start starts the janitor loop.
func (j *SessionJanitor) Start(ctx context.Context) {
	j.logger.Infow("starting session janitor", "interval", j.interval)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.runLoop(ctx)
	}()
}

// Stop stops the janitor gracefully.
func (j *SessionJanitor) Stop() {
	j.stopOnce.Do(func() {
		j.logger.Infow("stopping session janitor")
		close(j.stopChan)
		j.wg.Wait()
		j.logger.Infow("session janitor stopped")
	})
}

func (j *SessionJanitor) runLoop(ctx context.Context) {
	// Sweep immediately on startup to clear anything left from a crash.
	j.RunOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Infow("session janitor stopped due to context cancellation")
			return
		case <-j.stopChan:
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. If a sweep is already in flight the call
// returns immediately, so two sweeps never race on the same record.
func (j *SessionJanitor) RunOnce(ctx context.Context) {
	if !j.running.CompareAndSwap(false, true) {
		j.logger.Debugw("janitor sweep suppressed, previous run still in flight")
		return
	}
	defer j.running.Store(false)

	startTime := time.Now()
	now := j.now()

	evicted := j.cache.Sweep(now)

	deactivated, err := j.durable.BulkDeactivateExpired(ctx, now)
	if err != nil {
		j.logger.Errorw("failed to bulk deactivate expired sessions",
			"error", err,
			"duration", time.Since(startTime),
		)
	}

	if evicted > 0 || deactivated > 0 {
		j.logger.Infow("janitor sweep completed",
			"cache_evicted", evicted,
			"durable_deactivated", deactivated,
			"duration", time.Since(startTime),
		)
	} else {
		j.logger.Debugw("janitor sweep found nothing to clean",
			"duration", time.Since(startTime),
		)
	}
}
