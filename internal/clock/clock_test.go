package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayNormalizesToUTC(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	// 2026-03-02 01:30 in +08:00 is still 2026-03-01 in UTC.
	local := time.Date(2026, 3, 2, 1, 30, 0, 0, shanghai)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Day(local))
}

func TestFixed(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, Fixed(at).Now().Equal(at))
	assert.Equal(t, time.UTC, Fixed(at).Now().Location())
}

func TestMinutesBetween(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 90.5, MinutesBetween(from, from.Add(90*time.Minute+30*time.Second)), 1e-9)
}
