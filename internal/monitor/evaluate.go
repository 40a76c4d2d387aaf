package monitor

import (
	"time"

	"github.com/silema/silema/internal/clock"
	"github.com/silema/silema/internal/domain"
)

// Reason explains why a user was not alerted.
type Reason string

const (
	ReasonNoCheckIn         Reason = "no_checkin"
	ReasonWithinThreshold   Reason = "within_threshold"
	ReasonInCooldown        Reason = "alert_cooldown"
	ReasonNoContacts        Reason = "no_contacts"
	ReasonNotConfigured     Reason = "no_smtp_config"
	ReasonAllContactsFailed Reason = "all_contacts_failed"
)

// State is everything Evaluate looks at for one user.
type State struct {
	LastCheckIn      *time.Time
	LastAlert        *time.Time
	ThresholdMinutes int
	Contacts         []domain.Contact
}

// Decision is the outcome of Evaluate. When Fire is false Reason says why.
type Decision struct {
	Fire           bool
	Reason         Reason
	MinutesOverdue float64
	Contacts       []domain.Contact
}

// Evaluate decides whether a user must be alerted at now. The first matching
// rule wins:
//
//  1. never checked in        → no alert (users are only alerted after a first check-in)
//  2. within threshold        → no alert
//  3. alerted < 60 min ago    → no alert (cooldown)
//  4. no contacts             → no alert
//  5. otherwise               → alert every contact
func Evaluate(now time.Time, s State) Decision {
	if s.LastCheckIn == nil {
		return Decision{Reason: ReasonNoCheckIn}
	}

	threshold := s.ThresholdMinutes
	if threshold <= 0 {
		threshold = domain.DefaultThresholdMinutes
	}
	since := clock.MinutesBetween(*s.LastCheckIn, now)
	if since < float64(threshold) {
		return Decision{Reason: ReasonWithinThreshold}
	}

	if s.LastAlert != nil && clock.MinutesBetween(*s.LastAlert, now) < CooldownMinutes {
		return Decision{Reason: ReasonInCooldown}
	}

	if len(s.Contacts) == 0 {
		return Decision{Reason: ReasonNoContacts}
	}

	return Decision{Fire: true, MinutesOverdue: since, Contacts: s.Contacts}
}
