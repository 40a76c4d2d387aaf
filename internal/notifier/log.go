package notifier

import (
	"context"
	"log/slog"

	"github.com/silema/silema/internal/domain"
)

// LogSender records sends in the log instead of delivering them. Used when
// the service runs in dry-run mode.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a dry-run sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and always succeeds.
func (s *LogSender) Send(_ context.Context, to string, msg Message) error {
	s.logger.Info("Alert send (dry run)", "to", to, "subject", msg.Subject)
	return nil
}

// DryRunResolver hands out a LogSender for every user, but still requires the
// user to have credentials so dry runs exercise the same skip paths.
type DryRunResolver struct {
	Sender *LogSender
}

func (r DryRunResolver) ForUser(u *domain.User) (Notifier, error) {
	if !u.SMTP.Complete() {
		return nil, ErrNotConfigured
	}
	return r.Sender, nil
}
