// Package app wires configuration into the store and monitor shared by the
// API server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/silema/silema/internal/clock"
	"github.com/silema/silema/internal/config"
	"github.com/silema/silema/internal/db"
	"github.com/silema/silema/internal/monitor"
	"github.com/silema/silema/internal/notifier"
	"github.com/silema/silema/internal/store"
	"github.com/silema/silema/internal/store/postgres"
	"github.com/silema/silema/internal/store/sqlite"
)

// OpenStore connects to the configured database and applies migrations.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("Database connected",
			"driver", cfg.DBDriver,
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
		return postgres.New(pool), nil
	case config.DriverSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("Database connected", "driver", cfg.DBDriver, "path", cfg.SQLitePath)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// Resolver picks the mail transport: a logging dry run, or SMTP with the
// optional system fallback account.
func Resolver(cfg *config.Config, logger *slog.Logger) notifier.Resolver {
	if cfg.NotifierDryRun {
		logger.Warn("Notifier in dry-run mode, alerts are logged and not sent")
		return notifier.DryRunResolver{Sender: notifier.NewLogSender(logger)}
	}
	fallback := cfg.SMTPFallback()
	logger.Info("SMTP notifier configured", "fallback", fallback.Complete())
	return &notifier.SMTPResolver{
		FromName: cfg.MailFromName,
		Fallback: fallback,
		Logger:   logger,
	}
}

// NewMonitor builds the liveness monitor over st.
func NewMonitor(cfg *config.Config, st store.Store, clk clock.Clock, logger *slog.Logger) *monitor.Monitor {
	return monitor.New(st, Resolver(cfg, logger), clk, monitor.Config{
		Workers:         cfg.CycleWorkers,
		NotifyTimeout:   cfg.NotifyTimeout,
		DisplayTimezone: cfg.DisplayTimezone,
	}, logger)
}
