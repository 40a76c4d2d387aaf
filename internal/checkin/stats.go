// Package checkin records check-ins and derives streak statistics from a
// user's check-in history.
package checkin

import (
	"sort"
	"time"

	"github.com/silema/silema/internal/clock"
)

// Stats summarises a user's check-in history as of a given instant.
type Stats struct {
	ConsecutiveDays int        `json:"consecutiveDays"`
	TodayCount      int        `json:"todayCheckins"`
	LastCheckIn     *time.Time `json:"lastCheckin"`
}

// ComputeStats counts consecutive UTC calendar days with at least one
// check-in. The streak is anchored at today when today has a check-in and at
// yesterday otherwise, so a streak stays alive until a full day is missed.
func ComputeStats(now time.Time, checkIns []time.Time) Stats {
	var stats Stats
	if len(checkIns) == 0 {
		return stats
	}

	today := clock.Day(now)
	seen := make(map[time.Time]struct{}, len(checkIns))
	dates := make([]time.Time, 0, len(checkIns))
	var last time.Time

	for _, t := range checkIns {
		t = t.UTC()
		if t.After(last) {
			last = t
		}
		d := clock.Day(t)
		if d.Equal(today) {
			stats.TodayCount++
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	stats.LastCheckIn = &last

	// Newest first.
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	start := today
	if _, ok := seen[today]; !ok {
		start = today.AddDate(0, 0, -1)
	}
	for i, d := range dates {
		if !d.Equal(start.AddDate(0, 0, -i)) {
			break
		}
		stats.ConsecutiveDays++
	}
	return stats
}
