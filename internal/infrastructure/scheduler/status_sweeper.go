package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StaleDocumentSweeper persists overdue and expired transitions for
// documents whose stored status lags behind their dates
type StaleDocumentSweeper interface {
	SweepStale(ctx context.Context, now time.Time) (int, error)
}

// StatusSweeperConfig controls the sweep loop
type StatusSweeperConfig struct {
	Enabled  bool
	Interval time.Duration
	// Timeout bounds a single sweep run
	Timeout time.Duration
	// RunOnStart sweeps once immediately instead of waiting a full interval
	RunOnStart bool
}

// StatusSweeper runs the stale document sweep on a fixed interval
type StatusSweeper struct {
	sweeper StaleDocumentSweeper
	config  StatusSweeperConfig
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewStatusSweeper validates the configuration and creates the sweeper
func NewStatusSweeper(sweeper StaleDocumentSweeper, cfg StatusSweeperConfig, logger *zap.Logger) (*StatusSweeper, error) {
	if cfg.Enabled && cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: sweep interval must be positive", ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusSweeper{
		sweeper: sweeper,
		config:  cfg,
		logger:  logger.Named("status_sweeper"),
		now:     time.Now,
	}, nil
}

// Start launches the sweep loop. It is a no-op when disabled or already running.
func (s *StatusSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info("Status sweeper is disabled")
		return nil
	}
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Status sweeper started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep, bounded by ctx
func (s *StatusSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Status sweeper stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Status sweeper stop timed out")
		return ctx.Err()
	}
}

func (s *StatusSweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns the number of documents updated.
// Failures are logged; the next tick retries.
func (s *StatusSweeper) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := s.now()
	n, err := s.sweeper.SweepStale(ctx, start)
	if err != nil {
		s.logger.Error("Status sweep failed", zap.Int("updated", n), zap.Error(err))
		return n
	}
	if n > 0 {
		s.logger.Info("Status sweep completed",
			zap.Int("updated", n),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return n
}
