// Package sqlite implements store.Store on an embedded SQLite database.
// Instants are stored as UTC unix seconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/store"
)

// Store implements store.Store.
type Store struct{ db *sql.DB }

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the database at path, applies PRAGMAs and runs
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

const userColumns = `
	u.id, u.email, u.name, u.smtp_host, u.smtp_port, u.smtp_username, u.smtp_password, u.created_at,
	COALESCE(s.alert_threshold_minutes, 2880), COALESCE(s.enable_email_alert, 1), COALESCE(s.enable_sms_alert, 0)`

const userFrom = `
	FROM users u
	LEFT JOIN user_settings s ON s.user_id = u.id`

// CreateUser inserts a user together with its settings row. Zero settings
// take the defaults.
func (s *Store) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	if u.Settings == (domain.Settings{}) {
		u.Settings = domain.DefaultSettings()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = u.CreatedAt.UTC().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO users (email, name, smtp_host, smtp_port, smtp_username, smtp_password, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.Name, u.SMTP.Host, u.SMTP.Port, u.SMTP.Username, u.SMTP.Password, u.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, alert_threshold_minutes, enable_email_alert, enable_sms_alert, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Settings.AlertThresholdMinutes, boolToInt(u.Settings.EnableEmailAlert),
		boolToInt(u.Settings.EnableSMSAlert), u.CreatedAt.Unix(),
	); err != nil {
		return nil, fmt.Errorf("insert settings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	u.Contacts = nil
	return &u, nil
}

// GetUser returns a user with settings and contacts, or store.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+userFrom+` WHERE u.id = ?`, userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
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
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+userFrom+`
		WHERE COALESCE(s.enable_email_alert, 1) = 1
		ORDER BY u.id`)
	if err != nil {
		return nil, err
	}

	var users []domain.User
	index := make(map[int64]int)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[u.ID] = len(users)
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Contacts in one pass; the connection is free again once rows is closed.
	crows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.name, c.email, c.phone, c.is_primary, c.created_at
		FROM emergency_contacts c
		LEFT JOIN user_settings s ON s.user_id = c.user_id
		WHERE COALESCE(s.enable_email_alert, 1) = 1
		ORDER BY c.user_id, c.is_primary DESC, c.created_at ASC, c.id ASC`)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		c, err := scanContact(crows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[c.UserID]; ok {
			users[i].Contacts = append(users[i].Contacts, *c)
		}
	}
	return users, crows.Err()
}

// UpdateSettings replaces a user's settings.
func (s *Store) UpdateSettings(ctx context.Context, userID int64, st domain.Settings) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, alert_threshold_minutes, enable_email_alert, enable_sms_alert, updated_at)
		SELECT id, ?, ?, ?, ? FROM users WHERE id = ?
		ON CONFLICT(user_id) DO UPDATE SET
			alert_threshold_minutes = excluded.alert_threshold_minutes,
			enable_email_alert      = excluded.enable_email_alert,
			enable_sms_alert        = excluded.enable_sms_alert,
			updated_at              = excluded.updated_at`,
		st.AlertThresholdMinutes, boolToInt(st.EnableEmailAlert), boolToInt(st.EnableSMSAlert),
		time.Now().UTC().Unix(), userID,
	)
	return affected(res, err)
}

// UpdateSMTP replaces a user's mail credentials.
func (s *Store) UpdateSMTP(ctx context.Context, userID int64, cfg domain.SMTPConfig) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET smtp_host = ?, smtp_port = ?, smtp_username = ?, smtp_password = ?
		WHERE id = ?`,
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, userID,
	)
	return affected(res, err)
}

// DeleteUser removes a user; foreign keys cascade to every dependent row.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return affected(res, err)
}

// --------------------------------------------------------------------------
// Contacts
// --------------------------------------------------------------------------

const contactColumns = `id, user_id, name, email, phone, is_primary, created_at`

// ListContacts returns a user's contacts, primary first, then oldest first.
func (s *Store) ListContacts(ctx context.Context, userID int64) ([]domain.Contact, error) {
	return listContacts(ctx, s.db, userID)
}

// AddContact inserts a contact. The first contact of a user is always
// primary; a new primary demotes the previous one.
func (s *Store) AddContact(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := userExists(ctx, tx, c.UserID); err != nil {
		return nil, err
	}
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM emergency_contacts WHERE user_id = ?`, c.UserID).Scan(&n); err != nil {
		return nil, err
	}
	if n >= domain.MaxContacts {
		return nil, store.ErrContactLimit
	}
	if n == 0 {
		c.IsPrimary = true
	}
	if c.IsPrimary {
		if _, err := tx.ExecContext(ctx, `UPDATE emergency_contacts SET is_primary = 0 WHERE user_id = ?`, c.UserID); err != nil {
			return nil, err
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC().Truncate(time.Second)

	res, err := tx.ExecContext(ctx, `
		INSERT INTO emergency_contacts (user_id, name, email, phone, is_primary, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.Email, c.Phone, boolToInt(c.IsPrimary), c.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return &c, tx.Commit()
}

// UpdateContact rewrites name, email, phone and primary flag. Setting the
// flag demotes the previous primary; clearing it is ignored so a user with
// contacts always keeps one primary.
func (s *Store) UpdateContact(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if c.IsPrimary {
		if _, err := tx.ExecContext(ctx, `UPDATE emergency_contacts SET is_primary = 0 WHERE user_id = ? AND id <> ?`, c.UserID, c.ID); err != nil {
			return nil, err
		}
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE emergency_contacts
		SET name = ?, email = ?, phone = ?, is_primary = MAX(is_primary, ?)
		WHERE id = ? AND user_id = ?`,
		c.Name, c.Email, c.Phone, boolToInt(c.IsPrimary), c.ID, c.UserID,
	)
	if err := affected(res, err); err != nil {
		return nil, err
	}
	out, err := scanContact(tx.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM emergency_contacts WHERE id = ?`, c.ID))
	if err != nil {
		return nil, err
	}
	return out, tx.Commit()
}

// DeleteContact removes a contact. Deleting the primary promotes the oldest
// remaining contact.
func (s *Store) DeleteContact(ctx context.Context, userID, contactID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var primary int
	err = tx.QueryRowContext(ctx, `SELECT is_primary FROM emergency_contacts WHERE id = ? AND user_id = ?`, contactID, userID).Scan(&primary)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM emergency_contacts WHERE id = ?`, contactID); err != nil {
		return err
	}
	if primary == 1 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE emergency_contacts SET is_primary = 1
			WHERE id = (SELECT id FROM emergency_contacts WHERE user_id = ? ORDER BY created_at ASC, id ASC LIMIT 1)`,
			userID,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetPrimaryContact makes contactID the user's only primary contact.
func (s *Store) SetPrimaryContact(ctx context.Context, userID, contactID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE emergency_contacts SET is_primary = CASE WHEN id = ? THEN 1 ELSE 0 END
		WHERE user_id = ? AND EXISTS (SELECT 1 FROM emergency_contacts WHERE id = ? AND user_id = ?)`,
		contactID, userID, contactID, userID,
	)
	if err := affected(res, err); err != nil {
		return err
	}
	return tx.Commit()
}

// --------------------------------------------------------------------------
// Check-ins
// --------------------------------------------------------------------------

// RecordCheckIn appends a check-in at the given instant.
func (s *Store) RecordCheckIn(ctx context.Context, userID int64, at time.Time) (*domain.CheckIn, error) {
	if err := userExists(ctx, s.db, userID); err != nil {
		return nil, err
	}
	at = at.UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, `INSERT INTO checkins (user_id, checkin_time) VALUES (?, ?)`, userID, at.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert check-in: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.CheckIn{ID: id, UserID: userID, Time: at}, nil
}

// LastCheckIn returns the most recent check-in, or nil if there is none.
func (s *Store) LastCheckIn(ctx context.Context, userID int64) (*time.Time, error) {
	return maxTime(ctx, s.db, `SELECT MAX(checkin_time) FROM checkins WHERE user_id = ?`, userID)
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
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, checkin_time FROM checkins
		WHERE user_id = ?
		ORDER BY checkin_time DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CheckIn
	for rows.Next() {
		var (
			c  domain.CheckIn
			at int64
		)
		if err := rows.Scan(&c.ID, &c.UserID, &at); err != nil {
			return nil, err
		}
		c.Time = fromUnix(at)
		out = append(out, c)
	}
	return out, rows.Err()
}

// --------------------------------------------------------------------------
// Alerts
// --------------------------------------------------------------------------

// LastAlert returns when the user was last alerted, or nil.
func (s *Store) LastAlert(ctx context.Context, userID int64) (*time.Time, error) {
	return maxTime(ctx, s.db, `SELECT MAX(sent_time) FROM alerts WHERE user_id = ?`, userID)
}

// AppendAlert records one successful notification.
func (s *Store) AppendAlert(ctx context.Context, userID, contactID int64, sentAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (user_id, contact_id, sent_time, status) VALUES (?, ?, ?, ?)`,
		userID, contactID, sentAt.UTC().Unix(), domain.AlertStatusSent,
	)
	return err
}

// ListAlerts returns up to limit alerts for a user, newest first.
func (s *Store) ListAlerts(ctx context.Context, userID int64, limit int) ([]domain.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, contact_id, sent_time, status FROM alerts
		WHERE user_id = ?
		ORDER BY sent_time DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Alert
	for rows.Next() {
		var (
			a       domain.Alert
			contact sql.NullInt64
			sent    int64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &contact, &sent, &a.Status); err != nil {
			return nil, err
		}
		a.ContactID = contact.Int64
		a.SentTime = fromUnix(sent)
		out = append(out, a)
	}
	return out, rows.Err()
}

// PurgeAlerts deletes alerts sent before the cutoff.
func (s *Store) PurgeAlerts(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE sent_time < ?`, before.UTC().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		u          domain.User
		created    int64
		email, sms int
	)
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.SMTP.Host, &u.SMTP.Port, &u.SMTP.Username, &u.SMTP.Password, &created,
		&u.Settings.AlertThresholdMinutes, &email, &sms,
	); err != nil {
		return nil, err
	}
	u.CreatedAt = fromUnix(created)
	u.Settings.EnableEmailAlert = email != 0
	u.Settings.EnableSMSAlert = sms != 0
	return &u, nil
}

func scanContact(row scanner) (*domain.Contact, error) {
	var (
		c       domain.Contact
		primary int
		created int64
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &primary, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	c.IsPrimary = primary != 0
	c.CreatedAt = fromUnix(created)
	return &c, nil
}

func listContacts(ctx context.Context, q queryer, userID int64) ([]domain.Contact, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+contactColumns+` FROM emergency_contacts
		WHERE user_id = ?
		ORDER BY is_primary DESC, created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func userExists(ctx context.Context, q queryer, userID int64) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func maxTime(ctx context.Context, q queryer, query string, args ...any) (*time.Time, error) {
	var v sql.NullInt64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, nil
	}
	t := fromUnix(v.Int64)
	return &t, nil
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
