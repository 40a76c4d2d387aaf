package checkin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/silema/silema/internal/cache"
	"github.com/silema/silema/internal/clock"
	"github.com/silema/silema/internal/domain"
)

const (
	// StatsWindow is how many of the most recent check-ins stats look at.
	StatsWindow = 10000
	// RecentLimit is the length of the recent check-ins list.
	RecentLimit = 10
)

// Store is the slice of the account store the service needs.
type Store interface {
	RecordCheckIn(ctx context.Context, userID int64, at time.Time) (*domain.CheckIn, error)
	LastCheckIn(ctx context.Context, userID int64) (*time.Time, error)
	ListCheckIns(ctx context.Context, userID int64, limit int) ([]time.Time, error)
	RecentCheckIns(ctx context.Context, userID int64, limit int) ([]domain.CheckIn, error)
}

// Service records check-ins and serves their history and statistics.
type Service struct {
	store  Store
	cache  *cache.Cache
	clock  clock.Clock
	logger *slog.Logger
}

// NewService creates a Service. A nil cache disables caching.
func NewService(store Store, c *cache.Cache, clk clock.Clock, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if c == nil {
		c = cache.New(false, clk)
	}
	return &Service{store: store, cache: c, clock: clk, logger: logger}
}

// CheckIn records a check-in for the user at the current instant.
func (s *Service) CheckIn(ctx context.Context, userID int64) (*domain.CheckIn, error) {
	c, err := s.store.RecordCheckIn(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.Invalidate(userID)
	s.logger.Info("Check-in recorded", "user_id", userID, "checkin_id", c.ID)
	return c, nil
}

// Invalidate drops the cached stats for a user.
func (s *Service) Invalidate(userID int64) {
	s.cache.Drop(userID)
}

// Last returns the user's most recent check-in, or nil.
func (s *Service) Last(ctx context.Context, userID int64) (*time.Time, error) {
	return s.store.LastCheckIn(ctx, userID)
}

// Recent returns the user's latest check-ins, newest first.
func (s *Service) Recent(ctx context.Context, userID int64) ([]domain.CheckIn, error) {
	return s.store.RecentCheckIns(ctx, userID, RecentLimit)
}

// Stats computes streak statistics over the most recent check-ins.
func (s *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	times, err := s.store.ListCheckIns(ctx, userID, StatsWindow)
	if err != nil {
		return Stats{}, fmt.Errorf("list check-ins: %w", err)
	}
	return ComputeStats(s.clock.Now(), times), nil
}

// StatsJSON returns the JSON encoding of Stats with its ETag, served from the
// cache when possible. hit reports whether the cache answered.
func (s *Service) StatsJSON(ctx context.Context, userID int64) (e cache.Entry, hit bool, err error) {
	if e, ok := s.cache.Get(userID); ok {
		return e, true, nil
	}

	st, err := s.Stats(ctx, userID)
	if err != nil {
		return cache.Entry{}, false, err
	}
	data, err := json.Marshal(st)
	if err != nil {
		return cache.Entry{}, false, err
	}
	return s.cache.Put(userID, data, statsDeadline(s.clock.Now())), false, nil
}

// statsDeadline is when stats computed at now go stale. The streak and
// today's count change at UTC midnight without any write.
func statsDeadline(now time.Time) time.Time {
	deadline := now.Add(cache.MaxStatsAge)
	if midnight := clock.Day(now).AddDate(0, 0, 1); midnight.Before(deadline) {
		return midnight
	}
	return deadline
}
