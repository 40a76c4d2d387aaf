package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/notifier"
)

// CycleReport aggregates one pass over all monitored users.
type CycleReport struct {
	CycleID        string         `json:"cycleId"`
	StartedAt      time.Time      `json:"startedAt"`
	UsersChecked   int            `json:"usersChecked"`
	AlertsSent     int            `json:"alertsSent"`
	Skipped        int            `json:"skipped"`
	Failed         int            `json:"failed"`
	NotifyFailures int            `json:"notifyFailures"`
	SkipReasons    map[Reason]int `json:"skipReasons"`
	Duration       time.Duration  `json:"durationNs"`
}

// Summary is a one-line description for logs and the CLI.
func (r CycleReport) Summary() string {
	return fmt.Sprintf("%d users checked: %d alerted, %d skipped, %d failed, %d notify failures (%s)",
		r.UsersChecked, r.AlertsSent, r.Skipped, r.Failed, r.NotifyFailures, r.Duration.Round(time.Millisecond))
}

// UserResult is the outcome of checking a single user.
type UserResult struct {
	UserID       int64
	AlertSent    bool
	Reason       Reason // set when no alert was sent
	SuccessCount int
	FailCount    int
	Err          error // store failure while building state
}

// RunCycle evaluates every monitored user once. It returns
// ErrCycleInProgress without doing anything if another cycle is running.
func (m *Monitor) RunCycle(ctx context.Context) (CycleReport, error) {
	if !m.cycleMu.TryLock() {
		cyclesTotal.WithLabelValues("overlap_skipped").Inc()
		return CycleReport{}, ErrCycleInProgress
	}
	defer m.cycleMu.Unlock()
	return m.runCycle(ctx)
}

func (m *Monitor) runCycle(ctx context.Context) (CycleReport, error) {
	start := time.Now()
	report := CycleReport{
		CycleID:     uuid.NewString(),
		StartedAt:   m.clock.Now(),
		SkipReasons: make(map[Reason]int),
	}
	log := m.logger.With("cycle_id", report.CycleID)

	users, err := m.store.ListMonitoredUsers(ctx)
	if err != nil {
		cyclesTotal.WithLabelValues("error").Inc()
		return report, fmt.Errorf("list monitored users: %w", err)
	}
	if len(users) == 0 {
		log.Debug("No users to check")
		report.Duration = time.Since(start)
		cyclesTotal.WithLabelValues("completed").Inc()
		return report, nil
	}

	workers := m.workers
	if workers > len(users) {
		workers = len(users)
	}

	ch := make(chan *domain.User, len(users))
	for i := range users {
		ch <- &users[i]
	}
	close(ch)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range ch {
				res := m.CheckUser(ctx, u)

				mu.Lock()
				report.UsersChecked++
				report.NotifyFailures += res.FailCount
				switch {
				case res.Err != nil:
					report.Failed++
				case res.AlertSent:
					report.AlertsSent++
				default:
					report.Skipped++
					report.SkipReasons[res.Reason]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	report.Duration = time.Since(start)
	cyclesTotal.WithLabelValues("completed").Inc()
	cycleDuration.Observe(report.Duration.Seconds())

	log.Info("Monitor cycle complete", "summary", report.Summary())
	return report, nil
}

// CheckUser rebuilds one user's state, evaluates it and, when the user is
// overdue, notifies each contact in turn. Contacts are attempted
// independently; every successful send appends one alert record.
func (m *Monitor) CheckUser(ctx context.Context, u *domain.User) UserResult {
	res := UserResult{UserID: u.ID}
	log := m.logger.With("user_id", u.ID, "email", u.Email)

	state, err := m.loadState(ctx, u)
	if err != nil {
		log.Error("Failed to load monitoring state", "error", err)
		userErrorsTotal.Inc()
		res.Err = err
		return res
	}

	now := m.clock.Now()
	decision := Evaluate(now, state)
	if !decision.Fire {
		log.Debug("No alert", "reason", decision.Reason, "threshold_minutes", state.ThresholdMinutes)
		return m.skip(res, decision.Reason)
	}

	sender, err := m.notifiers.ForUser(u)
	if err != nil {
		if !errors.Is(err, notifier.ErrNotConfigured) {
			log.Warn("Notifier unavailable", "error", err)
		}
		log.Info("Alert due but no notifier configured", "minutes_overdue", int(decision.MinutesOverdue))
		return m.skip(res, ReasonNotConfigured)
	}

	log.Warn("User exceeded check-in threshold",
		"minutes_overdue", int(decision.MinutesOverdue),
		"threshold_minutes", state.ThresholdMinutes,
		"contacts", len(decision.Contacts))

	for _, c := range decision.Contacts {
		msg := Render(AlertContent{
			DisplayName:      u.DisplayName(),
			UserEmail:        u.Email,
			LastCheckIn:      *state.LastCheckIn,
			MinutesOverdue:   decision.MinutesOverdue,
			ThresholdMinutes: state.ThresholdMinutes,
			ContactName:      c.Name,
		}, m.location)

		if err := m.send(ctx, sender, c.Email, msg); err != nil {
			log.Warn("Alert send failed", "contact_id", c.ID, "to", c.Email, "error", err)
			notifyFailuresTotal.Inc()
			res.FailCount++
			continue
		}
		res.SuccessCount++
		alertsSentTotal.Inc()

		// The mail is out; record it even if the caller has gone away.
		if err := m.store.AppendAlert(context.WithoutCancel(ctx), u.ID, c.ID, m.clock.Now()); err != nil {
			log.Error("Failed to record alert", "contact_id", c.ID, "error", err)
		}
	}

	if res.SuccessCount == 0 {
		log.Warn("All alert attempts failed", "failed", res.FailCount)
		return m.skip(res, ReasonAllContactsFailed)
	}
	res.AlertSent = true
	log.Info("Alert sent", "succeeded", res.SuccessCount, "failed", res.FailCount)
	return res
}

func (m *Monitor) skip(res UserResult, reason Reason) UserResult {
	res.Reason = reason
	userSkipsTotal.WithLabelValues(string(reason)).Inc()
	return res
}

// loadState reads the two timestamps the evaluator needs. Contacts and
// settings come with the user snapshot.
func (m *Monitor) loadState(ctx context.Context, u *domain.User) (State, error) {
	lastCheckIn, err := m.store.LastCheckIn(ctx, u.ID)
	if err != nil {
		return State{}, fmt.Errorf("last check-in: %w", err)
	}
	lastAlert, err := m.store.LastAlert(ctx, u.ID)
	if err != nil {
		return State{}, fmt.Errorf("last alert: %w", err)
	}
	return State{
		LastCheckIn:      lastCheckIn,
		LastAlert:        lastAlert,
		ThresholdMinutes: u.Settings.Threshold(),
		Contacts:         u.Contacts,
	}, nil
}

// send bounds a single delivery attempt; expiry counts as a failure.
func (m *Monitor) send(ctx context.Context, n notifier.Notifier, to string, msg notifier.Message) error {
	sendCtx, cancel := context.WithTimeout(ctx, m.notifyTimeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- n.Send(sendCtx, to, msg) }()

	select {
	case err := <-errCh:
		return err
	case <-sendCtx.Done():
		return fmt.Errorf("send to %s: %w", to, sendCtx.Err())
	}
}
