package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/notifier"
)

func TestSendTestAlert_IgnoresThresholdAndCooldown(t *testing.T) {
	store := newFakeStore(testUser(1, 2880, bob(), carol()))
	now := t0.Add(time.Hour)
	store.checkIns[1] = t0
	store.alerts = append(store.alerts, alertRow{userID: 1, contactID: 10, sentAt: now.Add(-time.Minute)})
	n := &fakeNotifier{fail: map[string]bool{"carol@example.com": true}}

	report, err := newTestMonitor(store, n, now).SendTestAlert(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.FailCount)
	assert.False(t, report.SyntheticCheckIn)
	require.Len(t, report.Recipients, 2)
	assert.True(t, report.Recipients[0].Sent)
	assert.False(t, report.Recipients[1].Sent)
	assert.NotEmpty(t, report.Recipients[1].Error)
	assert.Contains(t, n.sent[0].msg.Subject, "1小时0分钟")

	// Test alerts never touch alert history.
	assert.Equal(t, 1, store.alertCount())
}

func TestSendTestAlert_SyntheticCheckIn(t *testing.T) {
	store := newFakeStore(testUser(1, 60, bob()))
	n := &fakeNotifier{}

	report, err := newTestMonitor(store, n, t0).SendTestAlert(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, report.SyntheticCheckIn)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "【紧急通知】Alice 已超过1小时5分钟未签到", n.sent[0].msg.Subject)
	assert.Zero(t, store.alertCount())
}

func TestSendTestAlert_Errors(t *testing.T) {
	noSMTP := testUser(2, 60, bob())
	noSMTP.SMTP = domain.SMTPConfig{}
	store := newFakeStore(testUser(1, 60), noSMTP)
	m := newTestMonitor(store, &fakeNotifier{}, t0)

	_, err := m.SendTestAlert(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoContacts)

	_, err = m.SendTestAlert(context.Background(), 2)
	assert.ErrorIs(t, err, notifier.ErrNotConfigured)

	_, err = m.SendTestAlert(context.Background(), 99)
	assert.Error(t, err)
}

func TestSendTestAlert_RunsDuringCycle(t *testing.T) {
	store := newFakeStore(testUser(1, 60, bob()))
	m := newTestMonitor(store, &fakeNotifier{}, t0)
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	_, err := m.SendTestAlert(context.Background(), 1)
	assert.NoError(t, err)
}
