// Package listener provides a Postgres LISTEN/NOTIFY consumer for check-in
// events. It holds a dedicated pgx connection (not from the pool) listening
// on the `checkin_recorded` channel.
//
// Every insert into checkins fires pg_notify from a trigger, so check-ins
// written by another process (a second API replica, silemactl) still evict
// this process's cached stats.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
)

const (
	// Channel is the NOTIFY channel written by the checkins trigger.
	Channel          = "checkin_recorded"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// CheckInEvent is the JSON payload from pg_notify('checkin_recorded', ...).
type CheckInEvent struct {
	UserID    int64 `json:"user_id"`
	Timestamp int64 `json:"ts"`
}

// Invalidator drops derived state for a user.
type Invalidator interface {
	Invalidate(userID int64)
}

// Start opens a dedicated connection and listens on the checkin_recorded
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, inv Invalidator, logger *slog.Logger) {
	exp := newBackOff()

	for {
		connected, err := listenLoop(ctx, dbURL, inv, logger)
		if ctx.Err() != nil {
			logger.Info("Check-in listener stopped (context cancelled)")
			return
		}
		if connected {
			exp.Reset()
		}

		wait := exp.NextBackOff()
		logger.Error("Check-in listener disconnected, reconnecting...",
			"error", err, "backoff", wait)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}

// newBackOff retries forever, doubling from reconnectBackoff up to
// maxReconnect.
func newBackOff() *backoff.ExponentialBackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = reconnectBackoff
	exp.Multiplier = 2
	exp.MaxInterval = maxReconnect
	exp.MaxElapsedTime = 0
	exp.Reset()
	return exp
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled; connected reports whether LISTEN succeeded.
func listenLoop(ctx context.Context, dbURL string, inv Invalidator, logger *slog.Logger) (connected bool, err error) {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+Channel)
	if err != nil {
		return false, fmt.Errorf("LISTEN %s: %w", Channel, err)
	}
	logger.Info("Check-in listener connected", "channel", Channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}
		handle(notification.Payload, inv, logger)
	}
}

// handle applies a single notification payload.
func handle(payload string, inv Invalidator, logger *slog.Logger) {
	var event CheckInEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil || event.UserID <= 0 {
		logger.Warn("Failed to parse check-in event", "payload", payload, "error", err)
		return
	}
	inv.Invalidate(event.UserID)
	logger.Debug("Check-in event received",
		"user_id", event.UserID,
		"checkin_time", time.Unix(event.Timestamp, 0).UTC())
}
