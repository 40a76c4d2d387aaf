// Command api is the Silema server: the liveness monitor plus its REST API.
//
// Usage:
//
//	silema-api
//	DB_DRIVER=sqlite SQLITE_PATH=./data/silema.db silema-api
//	API_PORT=8080 NOTIFIER_DRY_RUN=true silema-api

// @title Silema API
// @version 1.0.0
// @description Dead man's switch service: users check in periodically and their emergency contacts are emailed when a check-in is overdue.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Silema
// @license.name MIT
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/silema/silema/internal/api"
	"github.com/silema/silema/internal/app"
	"github.com/silema/silema/internal/cache"
	"github.com/silema/silema/internal/checkin"
	"github.com/silema/silema/internal/clock"
	"github.com/silema/silema/internal/config"
	"github.com/silema/silema/internal/listener"
	"github.com/silema/silema/internal/logger"
	"github.com/silema/silema/internal/maintenance"
	"github.com/silema/silema/internal/monitor"

	_ "github.com/silema/silema/docs" // swagger docs
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.APIToken == "" {
		if cfg.IsProduction() {
			log.Error("API_TOKEN is required in production")
			os.Exit(1)
		}
		log.Warn("API_TOKEN not set, /api/v1 is unauthenticated")
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to database
	log.Info("Connecting to database...", "driver", cfg.DBDriver)
	st, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	clk := clock.System{}

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled, clk)
	go appCache.Run(ctx)
	log.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Start the liveness monitor
	mon := app.NewMonitor(cfg, st, clk, log)
	go monitor.NewScheduler(mon, cfg.CheckInterval, cfg.StartupDelay, log).Run(ctx)

	// Start maintenance tickers (alert retention)
	go maintenance.Start(ctx, st, clk, maintenance.Config{
		AlertRetention:  cfg.AlertRetention,
		CleanupInterval: cfg.CleanupInterval,
	}, log)

	checkins := checkin.NewService(st, appCache, clk, log)

	// Start LISTEN/NOTIFY consumer so check-ins from other processes evict cached stats
	if cfg.DBDriver == config.DriverPostgres {
		go listener.Start(ctx, cfg.DatabaseURL, checkins, log)
	}

	// Create router
	router := api.NewRouter(api.Deps{
		Store:    st,
		CheckIns: checkins,
		Monitor:  mon,
		Cache:    appCache,
		Logger:   log,
	}, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // POST /monitor/run waits for a full cycle
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Info("Starting Silema API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			cancel()
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	log.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", "error", err)
	}
	log.Info("Server stopped")
}
