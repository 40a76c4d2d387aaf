// Package maintenance runs periodic background tasks as Go tickers.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/silema/silema/internal/clock"
)

// MinRetention protects the window the monitor reads for cooldown lookups.
const MinRetention = time.Hour

// Purger deletes alert records sent before a cutoff.
type Purger interface {
	PurgeAlerts(ctx context.Context, before time.Time) (int64, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	AlertRetention  time.Duration // Age after which alert records are purged
	CleanupInterval time.Duration // How often the purge runs
}

// Start launches the configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, p Purger, clk clock.Clock, cfg Config, logger *slog.Logger) {
	if cfg.AlertRetention <= 0 || cfg.CleanupInterval <= 0 {
		logger.Info("Maintenance disabled",
			"retention", cfg.AlertRetention,
			"cleanup", cfg.CleanupInterval)
		return
	}
	logger.Info("Maintenance tickers started",
		"retention", cfg.AlertRetention,
		"cleanup", cfg.CleanupInterval)

	t := time.NewTicker(cfg.CleanupInterval)
	defer t.Stop()

	runLoop(ctx, t.C, func() {
		_, _ = Purge(ctx, p, clk.Now().Add(-cfg.AlertRetention), clk, logger)
	})
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// Purge removes alert records sent before the cutoff. The cutoff is clamped
// so nothing from the last MinRetention is ever removed.
func Purge(ctx context.Context, p Purger, before time.Time, clk clock.Clock, logger *slog.Logger) (int64, error) {
	if limit := clk.Now().Add(-MinRetention); before.After(limit) {
		before = limit
	}
	start := time.Now()
	n, err := p.PurgeAlerts(ctx, before)
	if err != nil {
		logger.Warn("Cleanup: failed to purge old alerts", "before", before, "error", err)
		return 0, err
	}
	if n > 0 {
		logger.Info("Cleanup: purged old alerts",
			"count", n,
			"before", before,
			"duration", time.Since(start).Round(time.Millisecond))
	}
	return n, nil
}
