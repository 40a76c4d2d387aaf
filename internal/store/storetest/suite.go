// Package storetest is a compliance suite every store.Store backend must
// pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/store"
)

// Run exercises the suite. makeStore must return a clean, isolated store;
// it is called once per subtest.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("Users", func(t *testing.T) { testUsers(t, makeStore(t)) })
	t.Run("MonitoredUsers", func(t *testing.T) { testMonitoredUsers(t, makeStore(t)) })
	t.Run("Contacts", func(t *testing.T) { testContacts(t, makeStore(t)) })
	t.Run("ContactLimit", func(t *testing.T) { testContactLimit(t, makeStore(t)) })
	t.Run("CheckIns", func(t *testing.T) { testCheckIns(t, makeStore(t)) })
	t.Run("Alerts", func(t *testing.T) { testAlerts(t, makeStore(t)) })
	t.Run("DeleteUser", func(t *testing.T) { testDeleteUser(t, makeStore(t)) })
}

var base = time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

func newUser(t *testing.T, s store.Store, mutate ...func(*domain.User)) *domain.User {
	t.Helper()
	u := domain.User{
		Email: "u-" + uuid.NewString() + "@example.test",
		Name:  "Test User",
		SMTP:  domain.SMTPConfig{Host: "smtp.example.test", Port: 465, Username: "bot@example.test", Password: "pw"},
	}
	for _, m := range mutate {
		m(&u)
	}
	created, err := s.CreateUser(context.Background(), u)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	return created
}

func addContact(t *testing.T, s store.Store, userID int64, name string, primary bool, at time.Time) *domain.Contact {
	t.Helper()
	c, err := s.AddContact(context.Background(), domain.Contact{
		UserID:    userID,
		Name:      name,
		Email:     name + "@example.test",
		IsPrimary: primary,
		CreatedAt: at,
	})
	require.NoError(t, err)
	return c
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, "Test User", got.Name)
	assert.Equal(t, domain.DefaultSettings(), got.Settings)
	assert.True(t, got.SMTP.Complete())
	assert.Equal(t, time.UTC, got.CreatedAt.Location())

	_, err = s.GetUser(ctx, u.ID+1000)
	assert.ErrorIs(t, err, store.ErrNotFound)

	settings := domain.Settings{AlertThresholdMinutes: 90, EnableEmailAlert: false, EnableSMSAlert: true}
	require.NoError(t, s.UpdateSettings(ctx, u.ID, settings))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, settings, got.Settings)

	assert.ErrorIs(t, s.UpdateSettings(ctx, u.ID+1000, settings), store.ErrNotFound)

	smtp := domain.SMTPConfig{Host: "mail.example.test", Port: 587, Username: "a@example.test", Password: "x"}
	require.NoError(t, s.UpdateSMTP(ctx, u.ID, smtp))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, smtp, got.SMTP)

	assert.ErrorIs(t, s.UpdateSMTP(ctx, u.ID+1000, smtp), store.ErrNotFound)
	require.NoError(t, s.Ping(ctx))
}

func testMonitoredUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	on := newUser(t, s)
	off := newUser(t, s, func(u *domain.User) {
		u.Settings = domain.Settings{AlertThresholdMinutes: 60, EnableEmailAlert: false}
	})
	addContact(t, s, on.ID, "alice", false, base)
	addContact(t, s, on.ID, "bob", false, base.Add(time.Minute))
	addContact(t, s, off.ID, "carol", false, base)

	users, err := s.ListMonitoredUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, on.ID, users[0].ID)
	require.Len(t, users[0].Contacts, 2)
	assert.Equal(t, "alice", users[0].Contacts[0].Name)
	assert.True(t, users[0].Contacts[0].IsPrimary)
	assert.Equal(t, 2880, users[0].Settings.AlertThresholdMinutes)
}

func testContacts(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	first := addContact(t, s, u.ID, "first", false, base)
	assert.True(t, first.IsPrimary, "first contact becomes primary")
	second := addContact(t, s, u.ID, "second", false, base.Add(time.Minute))
	assert.False(t, second.IsPrimary)
	third := addContact(t, s, u.ID, "third", true, base.Add(2*time.Minute))
	assert.True(t, third.IsPrimary)

	contacts, err := s.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 3)
	assert.Equal(t, third.ID, contacts[0].ID, "primary listed first")
	assertOnePrimary(t, contacts, third.ID)

	// Set primary clears the others.
	require.NoError(t, s.SetPrimaryContact(ctx, u.ID, second.ID))
	contacts, err = s.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	assertOnePrimary(t, contacts, second.ID)
	assert.ErrorIs(t, s.SetPrimaryContact(ctx, u.ID, 999999), store.ErrNotFound)

	// Update fields and promote through update.
	first.Name = "renamed"
	first.Phone = "+8613800000000"
	first.IsPrimary = true
	updated, err := s.UpdateContact(ctx, *first)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "+8613800000000", updated.Phone)
	contacts, err = s.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	assertOnePrimary(t, contacts, first.ID)

	_, err = s.UpdateContact(ctx, domain.Contact{ID: second.ID, UserID: u.ID + 1000, Name: "x", Email: "x@example.test"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting the primary promotes the oldest remaining contact.
	require.NoError(t, s.DeleteContact(ctx, u.ID, first.ID))
	contacts, err = s.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assertOnePrimary(t, contacts, second.ID)

	// Deleting a non-primary leaves the primary alone.
	require.NoError(t, s.DeleteContact(ctx, u.ID, third.ID))
	contacts, err = s.ListContacts(ctx, u.ID)
	require.NoError(t, err)
	assertOnePrimary(t, contacts, second.ID)

	assert.ErrorIs(t, s.DeleteContact(ctx, u.ID, third.ID), store.ErrNotFound)

	_, err = s.AddContact(ctx, domain.Contact{UserID: u.ID + 1000, Name: "ghost", Email: "g@example.test"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, got.Contacts, 1)
}

func testContactLimit(t *testing.T, s store.Store) {
	u := newUser(t, s)
	for i := 0; i < domain.MaxContacts; i++ {
		addContact(t, s, u.ID, "c"+uuid.NewString()[:8], false, base.Add(time.Duration(i)*time.Minute))
	}
	_, err := s.AddContact(context.Background(), domain.Contact{UserID: u.ID, Name: "extra", Email: "extra@example.test"})
	require.Error(t, err)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func testCheckIns(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	last, err := s.LastCheckIn(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, last)

	for i := 0; i < 5; i++ {
		c, err := s.RecordCheckIn(ctx, u.ID, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		assert.NotZero(t, c.ID)
	}

	last, err = s.LastCheckIn(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(base.Add(4*time.Hour)))
	assert.Equal(t, time.UTC, last.Location())

	times, err := s.ListCheckIns(ctx, u.ID, 3)
	require.NoError(t, err)
	require.Len(t, times, 3)
	assert.True(t, times[0].Equal(base.Add(4*time.Hour)), "newest first")
	assert.True(t, times[2].Equal(base.Add(2*time.Hour)))

	recent, err := s.RecentCheckIns(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
	assert.Equal(t, u.ID, recent[0].UserID)

	_, err = s.RecordCheckIn(ctx, u.ID+1000, base)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testAlerts(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)
	c := addContact(t, s, u.ID, "alice", false, base)

	last, err := s.LastAlert(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, s.AppendAlert(ctx, u.ID, c.ID, base))
	require.NoError(t, s.AppendAlert(ctx, u.ID, c.ID, base.Add(2*time.Hour)))
	require.NoError(t, s.AppendAlert(ctx, u.ID, c.ID, base.Add(time.Hour)))

	last, err = s.LastAlert(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(base.Add(2*time.Hour)))

	alerts, err := s.ListAlerts(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, domain.AlertStatusSent, alerts[0].Status)
	assert.Equal(t, c.ID, alerts[0].ContactID)
	assert.True(t, alerts[0].SentTime.Equal(base.Add(2*time.Hour)))

	n, err := s.PurgeAlerts(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	alerts, err = s.ListAlerts(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	// Alert history outlives the contact it was sent to.
	require.NoError(t, s.DeleteContact(ctx, u.ID, c.ID))
	last, err = s.LastAlert(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func assertOnePrimary(t *testing.T, contacts []domain.Contact, wantID int64) {
	t.Helper()
	n := 0
	for _, c := range contacts {
		if c.IsPrimary {
			n++
			assert.Equal(t, wantID, c.ID)
		}
	}
	assert.Equal(t, 1, n, "exactly one primary contact")
}

func testDeleteUser(t *testing.T, s store.Store) {
	ctx := context.Background()
	gone := newUser(t, s)
	kept := newUser(t, s)
	c := addContact(t, s, gone.ID, "carol", true, base)
	addContact(t, s, kept.ID, "dave", true, base)
	_, err := s.RecordCheckIn(ctx, gone.ID, base)
	require.NoError(t, err)
	require.NoError(t, s.AppendAlert(ctx, gone.ID, c.ID, base.Add(time.Hour)))

	require.NoError(t, s.DeleteUser(ctx, gone.ID))

	_, err = s.GetUser(ctx, gone.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	contacts, err := s.ListContacts(ctx, gone.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)
	last, err := s.LastCheckIn(ctx, gone.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
	alerts, err := s.ListAlerts(ctx, gone.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	users, err := s.ListMonitoredUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, kept.ID, users[0].ID)
	assert.Len(t, users[0].Contacts, 1)

	assert.ErrorIs(t, s.DeleteUser(ctx, gone.ID), store.ErrNotFound)
}
