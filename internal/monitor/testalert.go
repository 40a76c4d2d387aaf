package monitor

import (
	"context"
	"fmt"
	"time"
)

// ContactResult is the outcome of notifying one contact.
type ContactResult struct {
	ContactID int64  `json:"contactId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Sent      bool   `json:"sent"`
	Error     string `json:"error,omitempty"`
}

// TestAlertReport is returned by SendTestAlert.
type TestAlertReport struct {
	UserID           int64           `json:"userId"`
	SuccessCount     int             `json:"successCount"`
	FailCount        int             `json:"failCount"`
	SyntheticCheckIn bool            `json:"syntheticCheckin"`
	Recipients       []ContactResult `json:"recipients"`
}

// SendTestAlert sends the alert a user's contacts would receive, right now,
// regardless of threshold and cooldown. It runs outside the cycle lock and
// writes no alert records. Users who never checked in get a check-in placed
// just past their threshold.
func (m *Monitor) SendTestAlert(ctx context.Context, userID int64) (TestAlertReport, error) {
	report := TestAlertReport{UserID: userID}

	u, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("get user: %w", err)
	}
	sender, err := m.notifiers.ForUser(u)
	if err != nil {
		return report, err
	}
	if len(u.Contacts) == 0 {
		return report, ErrNoContacts
	}

	now := m.clock.Now()
	threshold := u.Settings.Threshold()

	lastCheckIn, err := m.store.LastCheckIn(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("last check-in: %w", err)
	}
	if lastCheckIn == nil {
		synthetic := now.Add(-time.Duration(threshold+testAlertGraceMinutes) * time.Minute)
		lastCheckIn = &synthetic
		report.SyntheticCheckIn = true
	}
	overdue := now.Sub(*lastCheckIn).Minutes()

	log := m.logger.With("user_id", u.ID, "email", u.Email)
	for _, c := range u.Contacts {
		msg := Render(AlertContent{
			DisplayName:      u.DisplayName(),
			UserEmail:        u.Email,
			LastCheckIn:      *lastCheckIn,
			MinutesOverdue:   overdue,
			ThresholdMinutes: threshold,
			ContactName:      c.Name,
		}, m.location)

		cr := ContactResult{ContactID: c.ID, Name: c.Name, Email: c.Email}
		if err := m.send(ctx, sender, c.Email, msg); err != nil {
			log.Warn("Test alert send failed", "contact_id", c.ID, "error", err)
			cr.Error = err.Error()
			report.FailCount++
		} else {
			cr.Sent = true
			report.SuccessCount++
		}
		report.Recipients = append(report.Recipients, cr)
	}

	log.Info("Test alert finished", "succeeded", report.SuccessCount, "failed", report.FailCount)
	return report, nil
}
