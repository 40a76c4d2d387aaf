package monitor

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCycler struct {
	calls atomic.Int32
	err   error
}

func (c *countingCycler) RunCycle(context.Context) (CycleReport, error) {
	c.calls.Add(1)
	return CycleReport{}, c.err
}

func TestScheduler_RunsAtStartupAndOnInterval(t *testing.T) {
	c := &countingCycler{}
	s := NewScheduler(c, 20*time.Millisecond, time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_ToleratesOverlap(t *testing.T) {
	c := &countingCycler{err: ErrCycleInProgress}
	s := NewScheduler(c, 10*time.Millisecond, time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.GreaterOrEqual(t, c.calls.Load(), int32(2))
}

// slowCycler takes longer than the scheduler interval and records when each
// cycle started and finished.
type slowCycler struct {
	mu     sync.Mutex
	took   time.Duration
	starts []time.Time
	ends   []time.Time
}

func (c *slowCycler) RunCycle(ctx context.Context) (CycleReport, error) {
	c.mu.Lock()
	c.starts = append(c.starts, time.Now())
	c.mu.Unlock()

	select {
	case <-time.After(c.took):
	case <-ctx.Done():
	}

	c.mu.Lock()
	c.ends = append(c.ends, time.Now())
	c.mu.Unlock()
	return CycleReport{}, ctx.Err()
}

func TestScheduler_SlowCycleDoesNotRunBackToBack(t *testing.T) {
	const interval = 30 * time.Millisecond
	c := &slowCycler{took: 70 * time.Millisecond}
	var logs bytes.Buffer
	s := NewScheduler(c, interval, time.Millisecond, slog.New(slog.NewTextHandler(&logs, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	require.GreaterOrEqual(t, len(c.starts), 2)
	for i := 1; i < len(c.starts); i++ {
		gap := c.starts[i].Sub(c.ends[i-1])
		assert.GreaterOrEqual(t, gap, interval/2, "cycle %d started %s after the previous one ended", i, gap)
	}
	assert.Contains(t, logs.String(), "Monitor cycle overran the interval")
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(&countingCycler{}, 0, 0, discardLogger())
	assert.Equal(t, time.Minute, s.interval)
	assert.Equal(t, 5*time.Second, s.startupDelay)
}
