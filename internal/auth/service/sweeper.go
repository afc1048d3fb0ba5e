package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/chatblast/chatblast/internal/auth/metrics"
	"github.com/chatblast/chatblast/internal/auth/store"
)

// DefaultSweepInterval is how often the expiry sweep runs.
const DefaultSweepInterval = 30 * time.Minute

// SweepService periodically deactivates sessions past the session TTL and
// garbage-collects expired verification codes. Expiry only clears the access
// token and the active flag; the refresh token stays on the row but is
// unreachable because refresh lookups also filter on active=true. That
// asymmetry is deliberate policy, not an oversight.
type SweepService struct {
	Store      store.Store
	Logger     *slog.Logger
	Interval   time.Duration
	SessionTTL time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweepService creates a sweep service. Non-positive interval or TTL fall
// back to the defaults.
func NewSweepService(st store.Store, logger *slog.Logger, interval, sessionTTL time.Duration) *SweepService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	return &SweepService{
		Store:      st,
		Logger:     logger,
		Interval:   interval,
		SessionTTL: sessionTTL,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *SweepService) Start() {
	go s.run()
	s.Logger.Info("session sweep started", "interval", s.Interval, "session_ttl", s.SessionTTL)
}

// Stop shuts the worker down and blocks until any in-progress pass finishes,
// so nothing touches the store after it closes.
func (s *SweepService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("session sweep stopped")
}

func (s *SweepService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// First pass immediately on startup.
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep performs one pass. Exported so tests and operators can trigger it
// deterministically. The two cleanups are independent; a failure in one does
// not stop the other.
func (s *SweepService) Sweep(ctx context.Context) {
	now := time.Now().UTC()

	swept, err := s.Store.Sessions().DeactivateExpiredSessions(ctx, now.Add(-s.SessionTTL))
	if err != nil {
		s.Logger.Error("failed to deactivate expired sessions", "error", err)
	} else if swept > 0 {
		metrics.SessionsSweptTotal.Add(float64(swept))
		s.Logger.Info("deactivated expired sessions", "count", swept)
	}

	deleted, err := s.Store.VerificationCodes().DeleteExpiredVerificationCodes(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired verification codes", "error", err)
	} else if deleted > 0 {
		s.Logger.Debug("deleted expired verification codes", "count", deleted)
	}
}
