package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"clinica/internal/shared/config"
	"clinica/internal/shared/logger"
)

// Assessment is the advisory output of creation-time anomaly detection. It
// annotates security flags; it never blocks session creation.
type Assessment struct {
	Suspicious bool
	Reasons    []string
}

// Heuristics scores sessions for anomalies at creation time. Thresholds are
// configuration-driven and the output is advisory only ("flag, don't deny").
//
// Creation timestamps are tracked in memory per user, independent of which
// sessions are still active, so forced logout and capacity eviction cannot
// mask a burst of rapid logins.
type Heuristics struct {
	store  *RecordStore
	cfg    config.SessionConfig
	logger logger.Interface
	now    func() time.Time

	mu        sync.Mutex
	creations map[string][]time.Time
}

func NewHeuristics(store *RecordStore, cfg config.SessionConfig, log logger.Interface, now func() time.Time) *Heuristics {
	return &Heuristics{
		store:     store,
		cfg:       cfg,
		logger:    log,
		now:       now,
		creations: make(map[string][]time.Time),
	}
}

// DetectAtCreation flags a login as suspicious when either the user already
// created too many sessions inside the trailing burst window
// (credential-stuffing or token-replay signal) or the user has active
// sessions and none of them share the new IP's /16 prefix
// (unfamiliar-network signal). It must run before the new login terminates
// or evicts existing sessions, otherwise the active set it compares against
// is already gone.
func (h *Heuristics) DetectAtCreation(ctx context.Context, userID, ip string) Assessment {
	var out Assessment

	if h.recordCreation(userID) >= h.cfg.CreationBurstThreshold {
		out.Suspicious = true
		out.Reasons = append(out.Reasons, "creation_burst")
	}

	active := h.store.ListActiveByUser(ctx, userID)
	if len(active) > 0 {
		familiar := false
		prefix := networkPrefix(ip)
		for _, s := range active {
			if networkPrefix(s.IPAddress) == prefix {
				familiar = true
				break
			}
		}
		if !familiar {
			out.Suspicious = true
			out.Reasons = append(out.Reasons, "unfamiliar_network")
		}
	}

	if out.Suspicious {
		h.logger.Warnw("suspicious session creation flagged",
			"user_id", userID,
			"ip", ip,
			"reasons", strings.Join(out.Reasons, ","),
		)
	}
	return out
}

// recordCreation prunes the user's creation log to the trailing burst window,
// appends the current creation and returns how many creations preceded it
// inside the window.
func (h *Heuristics) recordCreation(userID string) int {
	now := h.now()
	windowStart := now.Add(-h.cfg.CreationBurstWindow())

	h.mu.Lock()
	defer h.mu.Unlock()

	log := h.creations[userID]
	kept := log[:0]
	for _, created := range log {
		if !created.Before(windowStart) {
			kept = append(kept, created)
		}
	}
	prior := len(kept)
	h.creations[userID] = append(kept, now)
	return prior
}

// networkPrefix reduces an IPv4 address to its first two octets. Non-IPv4
// inputs fall back to the full string, which makes the familiarity check an
// exact match for them.
func networkPrefix(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ip
	}
	return parts[0] + "." + parts[1]
}
