package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	defaultInterval     = time.Minute
	defaultStartupDelay = 5 * time.Second
)

// Cycler is what the scheduler drives.
type Cycler interface {
	RunCycle(ctx context.Context) (CycleReport, error)
}

// Scheduler runs a cycle once shortly after start and then with a fixed
// delay between the end of one cycle and the start of the next. Ticks that
// come due while a cycle is running are dropped, never queued.
type Scheduler struct {
	cycler       Cycler
	logger       *slog.Logger
	interval     time.Duration
	startupDelay time.Duration
}

// NewScheduler creates a Scheduler. Non-positive durations take the defaults
// (1 minute interval, 5 second startup delay).
func NewScheduler(c Cycler, interval, startupDelay time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if startupDelay <= 0 {
		startupDelay = defaultStartupDelay
	}
	return &Scheduler{cycler: c, logger: logger, interval: interval, startupDelay: startupDelay}
}

// Run blocks until ctx is cancelled. Intended to be called with `go`.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Monitor scheduler started", "interval", s.interval, "startup_delay", s.startupDelay)

	startup := time.NewTimer(s.startupDelay)
	defer startup.Stop()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-startup.C:
			s.logger.Info("Running initial monitor cycle")
			s.tick(ctx)
			ticker.Reset(s.interval)
		case <-ticker.C:
			s.tick(ctx)
			ticker.Reset(s.interval)
		case <-ctx.Done():
			s.logger.Info("Monitor scheduler stopped")
			return
		}
	}
}

// tick runs one cycle. The cycle itself refuses to overlap, so a tick that
// races a manual run is dropped here instead of queued. The caller resets the
// ticker afterwards, which discards any tick that fell due meanwhile.
func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()
	_, err := s.cycler.RunCycle(ctx)
	if elapsed := time.Since(start); elapsed >= s.interval && ctx.Err() == nil {
		s.logger.Warn("Monitor cycle overran the interval, skipping missed ticks",
			"elapsed", elapsed, "interval", s.interval)
	}
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInProgress):
		s.logger.Warn("Previous monitor cycle still running, skipping tick")
	case ctx.Err() != nil:
	default:
		s.logger.Error("Monitor cycle failed", "error", err)
	}
}
