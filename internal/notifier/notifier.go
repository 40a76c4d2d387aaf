// Package notifier delivers rendered alerts to emergency contacts.
//
// The monitor resolves one Notifier per user (credentials are per user) and
// calls Send once per contact. Transport failures are plain errors; a user
// without usable credentials yields ErrNotConfigured.
package notifier

import (
	"context"
	"errors"

	"github.com/silema/silema/internal/domain"
)

// ErrNotConfigured means no credentials are available to send for a user.
var ErrNotConfigured = errors.New("no smtp config")

// Message is a rendered alert.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Notifier sends one message to one address.
type Notifier interface {
	Send(ctx context.Context, to string, msg Message) error
}

// Resolver picks the Notifier to use for a user.
type Resolver interface {
	ForUser(u *domain.User) (Notifier, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(u *domain.User) (Notifier, error)

func (f ResolverFunc) ForUser(u *domain.User) (Notifier, error) { return f(u) }
