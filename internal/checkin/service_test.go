package checkin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silema/silema/internal/cache"
	"github.com/silema/silema/internal/clock"
	"github.com/silema/silema/internal/domain"
)

type memStore struct {
	mu       sync.Mutex
	checkIns []domain.CheckIn
	lists    int
}

func (m *memStore) RecordCheckIn(_ context.Context, userID int64, at time.Time) (*domain.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := domain.CheckIn{ID: int64(len(m.checkIns) + 1), UserID: userID, Time: at}
	m.checkIns = append(m.checkIns, c)
	return &c, nil
}

func (m *memStore) LastCheckIn(ctx context.Context, userID int64) (*time.Time, error) {
	recent, _ := m.RecentCheckIns(ctx, userID, 1)
	if len(recent) == 0 {
		return nil, nil
	}
	return &recent[0].Time, nil
}

func (m *memStore) ListCheckIns(ctx context.Context, userID int64, limit int) ([]time.Time, error) {
	m.mu.Lock()
	m.lists++
	m.mu.Unlock()
	recent, _ := m.RecentCheckIns(ctx, userID, limit)
	out := make([]time.Time, len(recent))
	for i, c := range recent {
		out[i] = c.Time
	}
	return out, nil
}

func (m *memStore) RecentCheckIns(_ context.Context, userID int64, limit int) ([]domain.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CheckIn
	for i := len(m.checkIns) - 1; i >= 0 && len(out) < limit; i-- {
		if m.checkIns[i].UserID == userID {
			out = append(out, m.checkIns[i])
		}
	}
	return out, nil
}

func TestService_CheckInAndStats(t *testing.T) {
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)
	st := &memStore{}
	for _, d := range []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	} {
		_, _ = st.RecordCheckIn(context.Background(), 1, d)
	}
	svc := NewService(st, cache.New(true, clock.Fixed(now)), clock.Fixed(now), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	stats, err := svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ConsecutiveDays)
	assert.Equal(t, 0, stats.TodayCount)

	// Cached until the next check-in.
	first, hit, err := svc.StatsJSON(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := svc.StatsJSON(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.ETag, second.ETag)
	assert.Equal(t, 2, st.lists)

	c, err := svc.CheckIn(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, now, c.Time)

	third, _, err := svc.StatsJSON(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ETag, third.ETag)
	assert.NotEqual(t, string(first.Data), string(third.Data))

	var got Stats
	require.NoError(t, json.Unmarshal(third.Data, &got))
	assert.Equal(t, 3, got.ConsecutiveDays)
	assert.Equal(t, 1, got.TodayCount)
	require.NotNil(t, got.LastCheckIn)
	assert.True(t, got.LastCheckIn.Equal(now))
}

func TestService_Recent(t *testing.T) {
	st := &memStore{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		_, _ = st.RecordCheckIn(context.Background(), 7, base.Add(time.Duration(i)*time.Hour))
	}
	svc := NewService(st, nil, clock.Fixed(base), slog.New(slog.NewTextHandler(io.Discard, nil)))

	recent, err := svc.Recent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)
	assert.Equal(t, base.Add(14*time.Hour), recent[0].Time)

	last, err := svc.Last(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, base.Add(14*time.Hour), *last)

	last, err = svc.Last(context.Background(), 8)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestService_InvalidateFromOutside(t *testing.T) {
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)
	st := &memStore{}
	svc := NewService(st, cache.New(true, clock.Fixed(now)), clock.Fixed(now), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, _, err := svc.StatsJSON(ctx, 1)
	require.NoError(t, err)

	// A check-in written by another process bypasses svc.CheckIn.
	_, _ = st.RecordCheckIn(ctx, 1, now)
	_, hit, err := svc.StatsJSON(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)

	svc.Invalidate(1)
	e, hit, err := svc.StatsJSON(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	var got Stats
	require.NoError(t, json.Unmarshal(e.Data, &got))
	assert.Equal(t, 1, got.TodayCount)
}

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func TestService_StatsExpireAtUTCMidnight(t *testing.T) {
	clk := &stepClock{t: time.Date(2024, 1, 3, 23, 58, 0, 0, time.UTC)}
	st := &memStore{}
	svc := NewService(st, cache.New(true, clk), clk, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, 1)
	require.NoError(t, err)
	before, _, err := svc.StatsJSON(ctx, 1)
	require.NoError(t, err)
	var got Stats
	require.NoError(t, json.Unmarshal(before.Data, &got))
	assert.Equal(t, 1, got.TodayCount)

	// Two and a half minutes later, well inside the normal cache lifetime,
	// it is a new UTC day and today's count must reset.
	clk.t = clk.t.Add(150 * time.Second)
	after, hit, err := svc.StatsJSON(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, json.Unmarshal(after.Data, &got))
	assert.Equal(t, 0, got.TodayCount)
	assert.Equal(t, 1, got.ConsecutiveDays)
}

func TestStatsDeadline(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), time.Date(2024, 1, 3, 10, 5, 0, 0, time.UTC)},
		{time.Date(2024, 1, 3, 23, 55, 0, 0, time.UTC), time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 1, 3, 23, 58, 0, 0, time.UTC), time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statsDeadline(tt.now), "now=%s", tt.now)
	}
}
