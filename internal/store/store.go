// Package store defines the account store: users, settings, emergency
// contacts, check-in history and alert history.
//
// Two backends implement Store: postgres (pgxpool) for deployments and
// sqlite (modernc, pure Go) for single-node installs and tests. Both pass
// the storetest compliance suite.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/silema/silema/internal/domain"
)

// ErrNotFound is returned when a user or contact does not exist.
var ErrNotFound = errors.New("not found")

// Store is the full account store.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	ListMonitoredUsers(ctx context.Context) ([]domain.User, error)
	UpdateSettings(ctx context.Context, userID int64, s domain.Settings) error
	UpdateSMTP(ctx context.Context, userID int64, cfg domain.SMTPConfig) error
	// DeleteUser removes the user together with settings, contacts,
	// check-ins and alerts.
	DeleteUser(ctx context.Context, userID int64) error

	// Contacts
	ListContacts(ctx context.Context, userID int64) ([]domain.Contact, error)
	AddContact(ctx context.Context, c domain.Contact) (*domain.Contact, error)
	UpdateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error)
	DeleteContact(ctx context.Context, userID, contactID int64) error
	SetPrimaryContact(ctx context.Context, userID, contactID int64) error

	// Check-ins
	RecordCheckIn(ctx context.Context, userID int64, at time.Time) (*domain.CheckIn, error)
	LastCheckIn(ctx context.Context, userID int64) (*time.Time, error)
	ListCheckIns(ctx context.Context, userID int64, limit int) ([]time.Time, error)
	RecentCheckIns(ctx context.Context, userID int64, limit int) ([]domain.CheckIn, error)

	// Alerts
	LastAlert(ctx context.Context, userID int64) (*time.Time, error)
	AppendAlert(ctx context.Context, userID, contactID int64, sentAt time.Time) error
	ListAlerts(ctx context.Context, userID int64, limit int) ([]domain.Alert, error)
	PurgeAlerts(ctx context.Context, before time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// ErrContactLimit is returned by AddContact when a user already has
// domain.MaxContacts contacts.
var ErrContactLimit = &domain.ValidationError{
	Field:   "contacts",
	Message: "a user can have at most 10 emergency contacts",
}
