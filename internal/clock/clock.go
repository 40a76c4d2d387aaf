// Package clock supplies the current instant and the UTC day arithmetic
// shared by alert evaluation and check-in statistics.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock, always in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. Used by tests and the CLI.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f).UTC() }

// Day truncates t to midnight of its UTC calendar date.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// MinutesBetween returns (to - from) in real-valued minutes.
func MinutesBetween(from, to time.Time) float64 {
	return to.Sub(from).Minutes()
}
