package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/silema/silema/internal/clock"
	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/notifier"
)

type alertRow struct {
	userID, contactID int64
	sentAt            time.Time
}

type fakeStore struct {
	mu       sync.Mutex
	users    []domain.User
	checkIns map[int64]time.Time
	alerts   []alertRow
	failFor  map[int64]error
	listErr  error
}

func newFakeStore(users ...domain.User) *fakeStore {
	return &fakeStore{
		users:    users,
		checkIns: make(map[int64]time.Time),
		failFor:  make(map[int64]error),
	}
}

func (s *fakeStore) ListMonitoredUsers(context.Context) ([]domain.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.User
	for _, u := range s.users {
		if u.Settings.EnableEmailAlert {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeStore) GetUser(_ context.Context, id int64) (*domain.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeStore) LastCheckIn(_ context.Context, id int64) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[id]; err != nil {
		return nil, err
	}
	t, ok := s.checkIns[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *fakeStore) LastAlert(_ context.Context, id int64) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last *time.Time
	for _, a := range s.alerts {
		if a.userID == id && (last == nil || a.sentAt.After(*last)) {
			t := a.sentAt
			last = &t
		}
	}
	return last, nil
}

func (s *fakeStore) AppendAlert(ctx context.Context, userID, contactID int64, sentAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alertRow{userID: userID, contactID: contactID, sentAt: sentAt})
	return nil
}

func (s *fakeStore) alertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

type sentMessage struct {
	to  string
	msg notifier.Message
}

// fakeNotifier records sends and fails for addresses listed in fail.
type fakeNotifier struct {
	mu    sync.Mutex
	sent  []sentMessage
	fail  map[string]bool
	block chan struct{}
}

func (n *fakeNotifier) Send(ctx context.Context, to string, msg notifier.Message) error {
	if n.block != nil {
		select {
		case <-n.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[to] {
		return errors.New("smtp: connection refused")
	}
	n.sent = append(n.sent, sentMessage{to: to, msg: msg})
	return nil
}

func (n *fakeNotifier) sentTo() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.to
	}
	return out
}

// resolverFor hands out n to users with complete credentials.
func resolverFor(n notifier.Notifier) notifier.Resolver {
	return notifier.ResolverFunc(func(u *domain.User) (notifier.Notifier, error) {
		if !u.SMTP.Complete() {
			return nil, notifier.ErrNotConfigured
		}
		return n, nil
	})
}

var testSMTP = domain.SMTPConfig{Host: "smtp.example.com", Port: 465, Username: "alerts@example.com", Password: "secret"}

func testUser(id int64, threshold int, contacts ...domain.Contact) domain.User {
	for i := range contacts {
		contacts[i].UserID = id
	}
	return domain.User{
		ID:    id,
		Email: "user@example.com",
		Name:  "Alice",
		Settings: domain.Settings{
			AlertThresholdMinutes: threshold,
			EnableEmailAlert:      true,
		},
		SMTP:     testSMTP,
		Contacts: contacts,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMonitor(s AccountStore, n notifier.Notifier, now time.Time) *Monitor {
	return New(s, resolverFor(n), clock.Fixed(now), Config{DisplayTimezone: "UTC"}, discardLogger())
}
