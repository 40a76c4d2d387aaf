package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/silema/silema/internal/domain"
)

const (
	defaultSMTPPort = 465
	dialTimeout     = 15 * time.Second
)

// SMTPResolver sends through the user's own SMTP account, falling back to a
// system account when one is configured.
type SMTPResolver struct {
	FromName string
	Fallback domain.SMTPConfig
	Logger   *slog.Logger
}

// ForUser returns an SMTP sender for u or ErrNotConfigured.
func (r *SMTPResolver) ForUser(u *domain.User) (Notifier, error) {
	cfg := u.SMTP
	if !cfg.Complete() {
		cfg = r.Fallback
	}
	if !cfg.Complete() {
		return nil, ErrNotConfigured
	}
	if cfg.Port == 0 {
		cfg.Port = defaultSMTPPort
	}
	return &SMTPSender{cfg: cfg, fromName: r.FromName, logger: r.Logger}, nil
}

// SMTPSender delivers a Message over SMTP. Port 465 uses implicit TLS, any
// other port upgrades with STARTTLS when the server offers it.
type SMTPSender struct {
	cfg      domain.SMTPConfig
	fromName string
	logger   *slog.Logger
}

// Send delivers msg to a single recipient.
func (s *SMTPSender) Send(ctx context.Context, to string, msg Message) error {
	m := mail.NewMsg()
	if err := m.FromFormat(s.fromName, s.cfg.Username); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("set recipient %q: %w", to, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	start := time.Now()
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s via %s:%d: %w", to, s.cfg.Host, s.cfg.Port, err)
	}
	if s.logger != nil {
		s.logger.Debug("Alert email sent",
			"to", to, "host", s.cfg.Host, "duration", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTimeout(dialTimeout),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return opts
}
