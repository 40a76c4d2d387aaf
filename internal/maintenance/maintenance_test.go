package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silema/silema/internal/clock"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int64
	err     error
}

func (f *fakePurger) PurgeAlerts(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, before)
	return f.n, f.err
}

func (f *fakePurger) calls() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.cutoffs...)
}

var (
	now    = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func TestPurgeUsesCutoff(t *testing.T) {
	p := &fakePurger{n: 3}
	before := now.Add(-48 * time.Hour)

	n, err := Purge(context.Background(), p, before, clock.Fixed(now), logger)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Equal(t, []time.Time{before}, p.calls())
}

func TestPurgeNeverTouchesLastHour(t *testing.T) {
	p := &fakePurger{}

	_, err := Purge(context.Background(), p, now, clock.Fixed(now), logger)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{now.Add(-time.Hour)}, p.calls())
}

func TestPurgeError(t *testing.T) {
	p := &fakePurger{err: errors.New("db down")}

	n, err := Purge(context.Background(), p, now.Add(-48*time.Hour), clock.Fixed(now), logger)
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestStartDisabled(t *testing.T) {
	p := &fakePurger{}
	done := make(chan struct{})
	go func() {
		Start(context.Background(), p, clock.Fixed(now), Config{}, logger)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start should return immediately when disabled")
	}
	assert.Empty(t, p.calls())
}

func TestStartPurgesOnTick(t *testing.T) {
	p := &fakePurger{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Start(ctx, p, clock.Fixed(now), Config{AlertRetention: 24 * time.Hour, CleanupInterval: 10 * time.Millisecond}, logger)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(p.calls()) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	for _, c := range p.calls() {
		assert.Equal(t, now.Add(-24*time.Hour), c)
	}
}
