// Package session implements the session lifecycle service: issuing,
// validating, capacity-limiting, flagging and terminating authenticated
// sessions. Credential verification happens upstream; this package only
// governs sessions whose user is already authenticated.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	domain "clinica/internal/domain/session"
	"clinica/internal/shared/biztime"
	"clinica/internal/shared/config"
	"clinica/internal/shared/errors"
	"clinica/internal/shared/goroutine"
	"clinica/internal/shared/logger"
)

// Termination reasons recorded on session_terminated events.
const (
	ReasonLogout       = "logout"
	ReasonForceLogout  = "force_logout"
	ReasonExpired      = "expired"
	ReasonInactivity   = "inactivity"
	ReasonSessionLimit = "session_limit"
	ReasonAdminRevoked = "admin_revoked"
)

// CreateInput carries the already-authenticated login context.
type CreateInput struct {
	UserID      string
	IPAddress   string
	UserAgent   string
	RememberMe  bool
	Secure      bool
	Fingerprint *domain.DeviceFingerprint
}

// CreateResult is what the authentication layer hands back to the client.
type CreateResult struct {
	SessionID string
	ExpiresAt time.Time
}

// ValidateResult is a structured validation outcome; callers branch on it
// instead of handling errors.
type ValidateResult struct {
	Valid          bool
	Session        *domain.Session
	RequiresReauth bool
	Reason         string
}

// Service orchestrates the record store, capacity enforcer and heuristics.
type Service struct {
	store       *RecordStore
	enforcer    *CapacityEnforcer
	heuristics  *Heuristics
	sink        domain.EventSink
	fingerprint domain.FingerprintStore
	location    domain.LocationResolver
	cfg         config.SessionConfig
	logger      logger.Interface
	now         func() time.Time

	// Per-user critical section across enforce+insert. Two concurrent logins
	// would otherwise both observe count < max and both insert; the mutex
	// makes the capacity bound a hard guarantee rather than a transient race
	// self-corrected by the janitor.
	userLocks sync.Map // userID -> *sync.Mutex
}

// Option customizes a Service. Currently used by tests to inject a clock.
type Option func(*Service)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocationResolver wires a geolocation backend.
func WithLocationResolver(r domain.LocationResolver) Option {
	return func(s *Service) { s.location = r }
}

func NewService(
	store *RecordStore,
	sink domain.EventSink,
	fingerprints domain.FingerprintStore,
	cfg config.SessionConfig,
	log logger.Interface,
	opts ...Option,
) *Service {
	s := &Service{
		store:       store,
		sink:        sink,
		fingerprint: fingerprints,
		location:    domain.NopLocationResolver{},
		cfg:         cfg,
		logger:      log,
		now:         biztime.NowUTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.enforcer = NewCapacityEnforcer(store, cfg.MaxSessions, log)
	s.heuristics = NewHeuristics(store, cfg, log, s.now)
	return s
}

// CreateSession mints a new session for an authenticated user. Capacity is
// enforced before the record is inserted so the per-user bound holds the
// moment this returns. Anomaly detection runs before forced logout and
// eviction so it observes the sessions this login is about to displace.
// Suspicion only annotates flags and never blocks creation.
func (s *Service) CreateSession(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if in.UserID == "" {
		return nil, errors.NewValidationError("user ID is required")
	}
	if in.IPAddress == "" || in.UserAgent == "" {
		return nil, errors.NewValidationError("IP address and user agent are required")
	}

	mu := s.userLock(in.UserID)
	mu.Lock()
	defer mu.Unlock()

	var assessment Assessment
	if s.cfg.EnableSuspiciousActivityDetection {
		assessment = s.heuristics.DetectAtCreation(ctx, in.UserID, in.IPAddress)
	}

	if !s.cfg.EnableConcurrentSessions {
		s.terminateAllLocked(ctx, in.UserID, "", ReasonForceLogout)
	} else {
		for _, evicted := range s.enforcer.Enforce(ctx, in.UserID) {
			s.emit(ctx, in.UserID, domain.EventSessionTerminated, map[string]string{
				"session_id": evicted.ID,
				"reason":     ReasonSessionLimit,
			})
		}
	}

	ttl := s.cfg.Timeout()
	if in.RememberMe {
		ttl = s.cfg.ExtendedTimeout()
	}

	record, err := domain.New(in.UserID, in.IPAddress, in.UserAgent, ttl, s.now())
	if err != nil {
		return nil, errors.NewValidationError("invalid session input", err.Error())
	}

	record.Flags.IsSecure = in.Secure
	record.Flags.SuspiciousActivity = assessment.Suspicious
	record.Flags.IsTrusted = !assessment.Suspicious

	if s.cfg.EnableLocationTracking {
		record.Location = s.location.Resolve(in.IPAddress)
	}

	s.store.Create(ctx, record)

	if s.cfg.EnableDeviceTracking && in.Fingerprint != nil {
		s.saveFingerprint(ctx, record, in.Fingerprint)
	}

	s.emit(ctx, in.UserID, domain.EventSessionCreated, map[string]string{
		"session_id": record.ID,
		"device_id":  record.DeviceID,
		"ip":         in.IPAddress,
		"browser":    record.Device.Browser,
		"os":         record.Device.OS,
	})
	if assessment.Suspicious {
		s.emit(ctx, in.UserID, domain.EventSuspiciousLogin, map[string]string{
			"session_id": record.ID,
			"ip":         in.IPAddress,
			"reasons":    strings.Join(assessment.Reasons, ","),
		})
	}

	s.logger.Infow("session created",
		"user_id", in.UserID,
		"session_id", record.ID,
		"remember_me", in.RememberMe,
		"suspicious", assessment.Suspicious,
	)

	return &CreateResult{
		SessionID: record.ID,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// ValidateSession runs the fixed check order: not found, expired, inactive,
// idle too long, then the advisory IP-consistency check. IP churn is common
// on mobile networks, so an IP change flags the session for re-auth but
// never invalidates it.
func (s *Service) ValidateSession(ctx context.Context, sessionID, ip string) ValidateResult {
	record, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return ValidateResult{Reason: "Session not found"}
	}

	now := s.now()

	if record.IsExpired(now) {
		// Already-terminated sessions past expiry must not re-emit a
		// termination event on every validation.
		if record.IsActive {
			s.terminate(ctx, record, ReasonExpired)
		}
		return ValidateResult{Reason: "Session expired"}
	}

	if !record.IsActive {
		return ValidateResult{Reason: "Session inactive"}
	}

	if record.IdleFor(now) > s.cfg.InactivityTimeout() {
		s.terminate(ctx, record, ReasonInactivity)
		return ValidateResult{Reason: "Session inactive too long"}
	}

	requiresReauth := record.Flags.RequiresReauth
	if ip != "" && s.cfg.EnableSuspiciousActivityDetection && ip != record.IPAddress {
		requiresReauth = true
		s.store.UpdateFields(ctx, sessionID,
			func(cached *domain.Session) {
				cached.Flags.SuspiciousActivity = true
				cached.Flags.RequiresReauth = true
			},
			map[string]any{
				"suspicious_activity": true,
				"requires_reauth":     true,
			},
		)
		record.Flags.SuspiciousActivity = true
		record.Flags.RequiresReauth = true
		s.emit(ctx, record.UserID, domain.EventIPChange, map[string]string{
			"session_id": sessionID,
			"old_ip":     record.IPAddress,
			"new_ip":     ip,
		})
	}

	s.store.UpdateFields(ctx, sessionID,
		func(cached *domain.Session) { cached.Touch(now) },
		map[string]any{"last_activity_at": now},
	)
	record.Touch(now)

	return ValidateResult{
		Valid:          true,
		Session:        record,
		RequiresReauth: requiresReauth,
	}
}

// TerminateSession is idempotent: terminating an absent or already-inactive
// session is a silent no-op.
func (s *Service) TerminateSession(ctx context.Context, sessionID, reason string) {
	record, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return
	}
	if !record.IsActive {
		return
	}
	s.terminate(ctx, record, reason)
}

// TerminateAllUserSessions ends every active session for the user, except
// the one named by exceptSessionID when non-empty ("log out everywhere but
// here").
func (s *Service) TerminateAllUserSessions(ctx context.Context, userID, exceptSessionID, reason string) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()
	s.terminateAllLocked(ctx, userID, exceptSessionID, reason)
}

// GetUserSessions returns the user's current active set, merged across both
// storage tiers and filtered by expiry at the current clock.
func (s *Service) GetUserSessions(ctx context.Context, userID string) []*domain.Session {
	now := s.now()
	all := s.store.ListActiveByUser(ctx, userID)
	out := make([]*domain.Session, 0, len(all))
	for _, record := range all {
		if !record.IsExpired(now) {
			out = append(out, record)
		}
	}
	return out
}

func (s *Service) terminateAllLocked(ctx context.Context, userID, exceptSessionID, reason string) {
	for _, record := range s.store.ListActiveByUser(ctx, userID) {
		if record.ID == exceptSessionID {
			continue
		}
		s.terminate(ctx, record, reason)
	}
}

func (s *Service) terminate(ctx context.Context, record *domain.Session, reason string) {
	s.store.MarkInactive(ctx, record.ID)
	s.emit(ctx, record.UserID, domain.EventSessionTerminated, map[string]string{
		"session_id": record.ID,
		"reason":     reason,
	})
	s.logger.Infow("session terminated",
		"user_id", record.UserID,
		"session_id", record.ID,
		"reason", reason,
	)
}

// emit appends a security event in the background; sink failures are logged,
// never propagated.
func (s *Service) emit(ctx context.Context, userID string, typ domain.EventType, metadata map[string]string) {
	ev := domain.Event{
		UserID:    userID,
		Type:      typ,
		Timestamp: s.now(),
		Metadata:  metadata,
	}
	goroutine.SafeGo(s.logger, "security-event-append", func() {
		if err := s.sink.Append(context.WithoutCancel(ctx), ev); err != nil {
			s.logger.Errorw("failed to append security event",
				"user_id", userID,
				"event_type", typ,
				"error", err,
			)
		}
	})
}

func (s *Service) saveFingerprint(ctx context.Context, record *domain.Session, fp *domain.DeviceFingerprint) {
	stamped := *fp
	stamped.DeviceID = record.DeviceID
	stamped.UserID = record.UserID
	stamped.LastSeen = s.now()
	if stamped.FirstSeen.IsZero() {
		stamped.FirstSeen = stamped.LastSeen
	}
	goroutine.SafeGo(s.logger, "fingerprint-upsert", func() {
		if err := s.fingerprint.Upsert(context.WithoutCancel(ctx), &stamped); err != nil {
			s.logger.Errorw("failed to upsert device fingerprint",
				"device_id", stamped.DeviceID,
				"error", err,
			)
		}
	})
}

func (s *Service) userLock(userID string) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
