// Package domain holds the account records the monitor works with: users,
// their settings and credentials, emergency contacts, check-ins and alerts.
// All instants are UTC.
package domain

import "time"

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// DefaultThresholdMinutes applies when a user has no threshold set (48h).
	DefaultThresholdMinutes = 48 * 60
	// MaxThresholdMinutes caps the threshold at 30 days.
	MaxThresholdMinutes = 30 * 24 * 60
	// MaxContacts is the per-user emergency contact limit.
	MaxContacts = 10
	// AlertStatusSent is the only status the dispatcher writes.
	AlertStatusSent = "sent"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// SMTPConfig holds a user's outgoing mail credentials. The monitor only
// checks for their presence.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Complete reports whether every field needed to send mail is set.
func (c SMTPConfig) Complete() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// Settings are the per-user monitoring preferences.
type Settings struct {
	AlertThresholdMinutes int
	EnableEmailAlert      bool
	EnableSMSAlert        bool
}

// Threshold returns the effective threshold, falling back to the default.
func (s Settings) Threshold() int {
	if s.AlertThresholdMinutes <= 0 {
		return DefaultThresholdMinutes
	}
	return s.AlertThresholdMinutes
}

// DefaultSettings are applied at registration.
func DefaultSettings() Settings {
	return Settings{
		AlertThresholdMinutes: DefaultThresholdMinutes,
		EnableEmailAlert:      true,
	}
}

// User is a monitored account together with its contacts.
type User struct {
	ID        int64
	Email     string
	Name      string
	Settings  Settings
	SMTP      SMTPConfig
	Contacts  []Contact
	CreatedAt time.Time
}

// DisplayName is the name shown to contacts; the email when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// PrimaryContact returns the primary contact, if any.
func (u *User) PrimaryContact() (Contact, bool) {
	for _, c := range u.Contacts {
		if c.IsPrimary {
			return c, true
		}
	}
	return Contact{}, false
}

// Contact is an emergency contact. All contacts of a user are notified;
// IsPrimary only affects display order.
type Contact struct {
	ID        int64
	UserID    int64
	Name      string
	Email     string
	Phone     string
	IsPrimary bool
	CreatedAt time.Time
}

// CheckIn is a single liveness signal from a user.
type CheckIn struct {
	ID     int64
	UserID int64
	Time   time.Time
}

// Alert is one successful notification of one contact.
type Alert struct {
	ID        int64
	UserID    int64
	ContactID int64
	SentTime  time.Time
	Status    string
}
