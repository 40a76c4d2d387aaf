// Package monitor is the liveness engine: on every tick it rebuilds each
// user's monitoring state from the account store, decides whether the user is
// overdue, and alerts every emergency contact of overdue users.
//
// Pipeline: snapshot users → evaluate (pure) → notify contacts → record alerts.
// State lives entirely in the store; re-running a cycle is always safe.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/silema/silema/internal/clock"
	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/notifier"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// CooldownMinutes is the minimum spacing between alert events for a
	// user. It does not depend on the user's threshold.
	CooldownMinutes = 60

	// testAlertGraceMinutes back-dates the synthetic check-in used by test
	// alerts for users who never checked in.
	testAlertGraceMinutes = 5

	defaultWorkers       = 4
	defaultNotifyTimeout = 30 * time.Second
	defaultDisplayZone   = "Asia/Shanghai"
)

var (
	// ErrCycleInProgress is returned when a cycle is requested while one runs.
	ErrCycleInProgress = errors.New("monitor cycle already in progress")
	// ErrNoContacts is returned by test alerts for users without contacts.
	ErrNoContacts = errors.New("user has no emergency contacts")
)

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// AccountStore is the read/append view of the account store the engine needs.
type AccountStore interface {
	ListMonitoredUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	LastCheckIn(ctx context.Context, userID int64) (*time.Time, error)
	LastAlert(ctx context.Context, userID int64) (*time.Time, error)
	AppendAlert(ctx context.Context, userID, contactID int64, sentAt time.Time) error
}

// Config tunes a Monitor. Zero values take defaults.
type Config struct {
	Workers         int           // users evaluated concurrently per cycle
	NotifyTimeout   time.Duration // bound on a single Send
	DisplayTimezone string        // zone used to print check-in times
}

// --------------------------------------------------------------------------
// Monitor
// --------------------------------------------------------------------------

// Monitor runs alert cycles and manual test alerts.
type Monitor struct {
	store     AccountStore
	notifiers notifier.Resolver
	clock     clock.Clock
	logger    *slog.Logger

	workers       int
	notifyTimeout time.Duration
	location      *time.Location

	// cycleMu admits at most one cycle at a time.
	cycleMu sync.Mutex
}

// New creates a Monitor.
func New(store AccountStore, notifiers notifier.Resolver, clk clock.Clock, cfg Config, logger *slog.Logger) *Monitor {
	if cfg.Workers < 1 {
		cfg.Workers = defaultWorkers
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	if cfg.DisplayTimezone == "" {
		cfg.DisplayTimezone = defaultDisplayZone
	}
	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		logger.Warn("Unknown display timezone, using UTC", "timezone", cfg.DisplayTimezone, "error", err)
		loc = time.UTC
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Monitor{
		store:         store,
		notifiers:     notifiers,
		clock:         clk,
		logger:        logger,
		workers:       cfg.Workers,
		notifyTimeout: cfg.NotifyTimeout,
		location:      loc,
	}
}
