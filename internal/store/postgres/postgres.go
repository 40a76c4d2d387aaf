// Package postgres implements store.Store on PostgreSQL through the shared
// pgxpool in internal/db. Reads and single-row writes go through prepared
// statements; contact writes that must keep the one-primary invariant run in
// transactions.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/silema/silema/internal/db"
	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/store"
)

// Store implements store.Store.
type Store struct {
	pool *db.Pool
}

var _ store.Store = (*Store)(nil)

// New wraps an open pool.
func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// Ping runs the health check statement.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.HealthCheck(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

// CreateUser inserts a user and its settings row. Zero settings take the
// defaults.
func (s *Store) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	if u.Settings == (domain.Settings{}) {
		u.Settings = domain.DefaultSettings()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = u.CreatedAt.UTC().Truncate(time.Microsecond)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO users (email, name, smtp_host, smtp_port, smtp_username, smtp_password, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			u.Email, u.Name, u.SMTP.Host, u.SMTP.Port, u.SMTP.Username, u.SMTP.Password, u.CreatedAt,
		).Scan(&u.ID); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_settings (user_id, alert_threshold_minutes, enable_email_alert, enable_sms_alert)
			VALUES ($1, $2, $3, $4)`,
			u.ID, u.Settings.AlertThresholdMinutes, u.Settings.EnableEmailAlert, u.Settings.EnableSMSAlert,
		); err != nil {
			return fmt.Errorf("insert settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.Contacts = nil
	return &u, nil
}

// GetUser returns a user with settings and contacts, or store.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, "user_by_id", userID))
	if err != nil {
		return nil, err
	}
	if u.Contacts, err = s.ListContacts(ctx, userID); err != nil {
		return nil, err
	}
	return u, nil
}

// ListMonitoredUsers returns every user with email alerts enabled, contacts
// included.
func (s *Store) ListMonitoredUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, "monitored_users")
	if err != nil {
		return nil, err
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
		u, err := scanUser(row)
		if err != nil {
			return domain.User{}, err
		}
		return *u, nil
	})
	if err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(users))
	for i, u := range users {
		index[u.ID] = i
	}

	rows, err = s.pool.Query(ctx, "monitored_contacts")
	if err != nil {
		return nil, err
	}
	contacts, err := pgx.CollectRows(rows, collectContact)
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if i, ok := index[c.UserID]; ok {
			users[i].Contacts = append(users[i].Contacts, c)
		}
	}
	return users, nil
}

// UpdateSettings replaces a user's settings.
func (s *Store) UpdateSettings(ctx context.Context, userID int64, st domain.Settings) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO user_settings (user_id, alert_threshold_minutes, enable_email_alert, enable_sms_alert, updated_at)
		SELECT id, $2, $3, $4, now() FROM users WHERE id = $1
		ON CONFLICT (user_id) DO UPDATE SET
			alert_threshold_minutes = EXCLUDED.alert_threshold_minutes,
			enable_email_alert      = EXCLUDED.enable_email_alert,
			enable_sms_alert        = EXCLUDED.enable_sms_alert,
			updated_at              = EXCLUDED.updated_at`,
		userID, st.AlertThresholdMinutes, st.EnableEmailAlert, st.EnableSMSAlert,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateSMTP replaces a user's mail credentials.
func (s *Store) UpdateSMTP(ctx context.Context, userID int64, cfg domain.SMTPConfig) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET smtp_host = $2, smtp_port = $3, smtp_username = $4, smtp_password = $5
		WHERE id = $1`,
		userID, cfg.Host, cfg.Port, cfg.Username, cfg.Password,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user; foreign keys cascade to every dependent row.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --------------------------------------------------------------------------
// Contacts
// --------------------------------------------------------------------------

// ListContacts returns a user's contacts, primary first, then oldest first.
func (s *Store) ListContacts(ctx context.Context, userID int64) ([]domain.Contact, error) {
	rows, err := s.pool.Query(ctx, "contacts_by_user", userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, collectContact)
}

// AddContact inserts a contact. The user row is locked so concurrent adds
// cannot exceed the contact limit. The first contact is always primary.
func (s *Store) AddContact(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC().Truncate(time.Microsecond)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, c.UserID); err != nil {
			return err
		}
		var n int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM emergency_contacts WHERE user_id = $1`, c.UserID).Scan(&n); err != nil {
			return err
		}
		if n >= domain.MaxContacts {
			return store.ErrContactLimit
		}
		if n == 0 {
			c.IsPrimary = true
		}
		if c.IsPrimary {
			if _, err := tx.Exec(ctx, `UPDATE emergency_contacts SET is_primary = FALSE WHERE user_id = $1`, c.UserID); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, `
			INSERT INTO emergency_contacts (user_id, name, email, phone, is_primary, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			c.UserID, c.Name, c.Email, c.Phone, c.IsPrimary, c.CreatedAt,
		).Scan(&c.ID)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateContact rewrites name, email, phone and primary flag. Setting the
// flag demotes the previous primary; clearing it is ignored.
func (s *Store) UpdateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	var out domain.Contact
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if c.IsPrimary {
			if _, err := tx.Exec(ctx, `UPDATE emergency_contacts SET is_primary = FALSE WHERE user_id = $1 AND id <> $2`, c.UserID, c.ID); err != nil {
				return err
			}
		}
		rows, err := tx.Query(ctx, `
			UPDATE emergency_contacts
			SET name = $3, email = $4, phone = $5, is_primary = is_primary OR $6
			WHERE id = $1 AND user_id = $2
			RETURNING `+db.ContactColumns,
			c.ID, c.UserID, c.Name, c.Email, c.Phone, c.IsPrimary,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectExactlyOneRow(rows, collectContact)
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteContact removes a contact. Deleting the primary promotes the oldest
// remaining contact.
func (s *Store) DeleteContact(ctx context.Context, userID, contactID int64) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var primary bool
		err := tx.QueryRow(ctx, `
			DELETE FROM emergency_contacts WHERE id = $1 AND user_id = $2
			RETURNING is_primary`,
			contactID, userID,
		).Scan(&primary)
		if err != nil {
			return notFound(err)
		}
		if !primary {
			return nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE emergency_contacts SET is_primary = TRUE
			WHERE id = (SELECT id FROM emergency_contacts WHERE user_id = $1 ORDER BY created_at ASC, id ASC LIMIT 1)`,
			userID,
		)
		return err
	})
}

// SetPrimaryContact makes contactID the user's only primary contact.
func (s *Store) SetPrimaryContact(ctx context.Context, userID, contactID int64) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var one int
		if err := tx.QueryRow(ctx, `SELECT 1 FROM emergency_contacts WHERE id = $1 AND user_id = $2`, contactID, userID).Scan(&one); err != nil {
			return notFound(err)
		}
		// Two statements: the partial unique index is checked per row.
		if _, err := tx.Exec(ctx, `UPDATE emergency_contacts SET is_primary = FALSE WHERE user_id = $1 AND is_primary`, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE emergency_contacts SET is_primary = TRUE WHERE id = $1`, contactID)
		return err
	})
}

// --------------------------------------------------------------------------
// Check-ins
// --------------------------------------------------------------------------

// RecordCheckIn appends a check-in at the given instant.
func (s *Store) RecordCheckIn(ctx context.Context, userID int64, at time.Time) (*domain.CheckIn, error) {
	var one int
	if err := s.pool.QueryRow(ctx, "user_exists", userID).Scan(&one); err != nil {
		return nil, notFound(err)
	}
	c := domain.CheckIn{UserID: userID, Time: at.UTC().Truncate(time.Microsecond)}
	if err := s.pool.QueryRow(ctx, "insert_checkin", userID, c.Time).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("insert check-in: %w", err)
	}
	return &c, nil
}

// LastCheckIn returns the most recent check-in, or nil if there is none.
func (s *Store) LastCheckIn(ctx context.Context, userID int64) (*time.Time, error) {
	return s.maxTime(ctx, "last_checkin", userID)
}

// ListCheckIns returns up to limit check-in instants, newest first.
func (s *Store) ListCheckIns(ctx context.Context, userID int64, limit int) ([]time.Time, error) {
	checkIns, err := s.RecentCheckIns(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(checkIns))
	for i, c := range checkIns {
		out[i] = c.Time
	}
	return out, nil
}

// RecentCheckIns returns up to limit check-ins, newest first.
func (s *Store) RecentCheckIns(ctx context.Context, userID int64, limit int) ([]domain.CheckIn, error) {
	rows, err := s.pool.Query(ctx, "recent_checkins", userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CheckIn, error) {
		var c domain.CheckIn
		err := row.Scan(&c.ID, &c.UserID, &c.Time)
		c.Time = c.Time.UTC()
		return c, err
	})
}

// --------------------------------------------------------------------------
// Alerts
// --------------------------------------------------------------------------

// LastAlert returns when the user was last alerted, or nil.
func (s *Store) LastAlert(ctx context.Context, userID int64) (*time.Time, error) {
	return s.maxTime(ctx, "last_alert", userID)
}

// AppendAlert records one successful notification.
func (s *Store) AppendAlert(ctx context.Context, userID, contactID int64, sentAt time.Time) error {
	_, err := s.pool.Exec(ctx, "insert_alert", userID, contactID, sentAt.UTC(), domain.AlertStatusSent)
	return err
}

// ListAlerts returns up to limit alerts for a user, newest first.
func (s *Store) ListAlerts(ctx context.Context, userID int64, limit int) ([]domain.Alert, error) {
	rows, err := s.pool.Query(ctx, "recent_alerts", userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Alert, error) {
		var (
			a       domain.Alert
			contact *int64
		)
		if err := row.Scan(&a.ID, &a.UserID, &contact, &a.SentTime, &a.Status); err != nil {
			return a, err
		}
		if contact != nil {
			a.ContactID = *contact
		}
		a.SentTime = a.SentTime.UTC()
		return a, nil
	})
}

// PurgeAlerts deletes alerts sent before the cutoff.
func (s *Store) PurgeAlerts(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, "purge_alerts", before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func (s *Store) maxTime(ctx context.Context, stmt string, userID int64) (*time.Time, error) {
	var t *time.Time
	if err := s.pool.QueryRow(ctx, stmt, userID).Scan(&t); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	u := t.UTC()
	return &u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.SMTP.Host, &u.SMTP.Port, &u.SMTP.Username, &u.SMTP.Password, &u.CreatedAt,
		&u.Settings.AlertThresholdMinutes, &u.Settings.EnableEmailAlert, &u.Settings.EnableSMSAlert,
	); err != nil {
		return nil, notFound(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func collectContact(row pgx.CollectableRow) (domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.IsPrimary, &c.CreatedAt)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, err
}

func lockUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	return notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
