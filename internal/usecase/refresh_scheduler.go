package usecase

import (
	"context"
	"sync"
	"time"

	"flight-tracker-service/pkg/logger"
)

// DefaultRefreshInterval is how often tracked flights are refreshed
const DefaultRefreshInterval = 300 * time.Second

// Refresher runs one refresh cycle
type Refresher interface {
	RefreshAll(ctx context.Context) (RefreshReport, error)
}

// RefreshScheduler triggers refresh cycles on a fixed interval.
// Cycles run one at a time on a single goroutine.
type RefreshScheduler struct {
	refresher Refresher
	interval  time.Duration
	logger    logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefreshScheduler creates a new refresh scheduler
func NewRefreshScheduler(refresher Refresher, interval time.Duration, logger logger.Logger) *RefreshScheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshScheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

// Start begins polling. Calling Start on a running scheduler does nothing.
func (s *RefreshScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)

	s.logger.Info("Refresh scheduler started", "interval", s.interval)
}

// Stop ends polling and waits for a running cycle to finish
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the scheduler is active
func (s *RefreshScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *RefreshScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Refresh scheduler stopped")
			return
		case <-ticker.C:
			s.logger.Debug("Refreshing tracked flights")
			if _, err := s.refresher.RefreshAll(ctx); err != nil {
				s.logger.Error("Error refreshing flights", "error", err)
			}
		}
	}
}
