// Package db provides a pgxpool-based connection pool with schema migration,
// prepared statement registration and health checking.
package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/silema/silema/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New migrates the schema, then creates and validates a connection pool.
// Migrations run first because statements are prepared against the schema
// on every new connection.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if err := migrate(ctx, poolCfg.ConnConfig); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// migrate applies the embedded SQL files in name order over a dedicated
// connection. Every statement is idempotent.
func migrate(ctx context.Context, connCfg *pgx.ConnConfig) error {
	conn, err := pgx.ConnectConfig(ctx, connCfg.Copy())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		body, err := fs.ReadFile(migrationsFS, "migrations/"+e.Name())
		if err != nil {
			return err
		}
		err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, string(body))
			return err
		})
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return nil
}

// registerPreparedStatements registers the statements the store and the
// monitor use on every cycle. Multi-step contact writes run as plain SQL
// inside transactions.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Users
		"user_by_id": `SELECT ` + userColumns + userFrom + ` WHERE u.id = $1`,
		"monitored_users": `SELECT ` + userColumns + userFrom + `
			WHERE COALESCE(s.enable_email_alert, TRUE)
			ORDER BY u.id`,
		"user_exists": "SELECT 1 FROM users WHERE id = $1",

		// Contacts
		"contacts_by_user": `SELECT ` + ContactColumns + ` FROM emergency_contacts
			WHERE user_id = $1
			ORDER BY is_primary DESC, created_at ASC, id ASC`,
		"monitored_contacts": `SELECT c.id, c.user_id, c.name, c.email, c.phone, c.is_primary, c.created_at
			FROM emergency_contacts c
			LEFT JOIN user_settings s ON s.user_id = c.user_id
			WHERE COALESCE(s.enable_email_alert, TRUE)
			ORDER BY c.user_id, c.is_primary DESC, c.created_at ASC, c.id ASC`,

		// Check-ins
		"insert_checkin": "INSERT INTO checkins (user_id, checkin_time) VALUES ($1, $2) RETURNING id",
		"last_checkin":   "SELECT MAX(checkin_time) FROM checkins WHERE user_id = $1",
		"recent_checkins": `SELECT id, user_id, checkin_time FROM checkins
			WHERE user_id = $1
			ORDER BY checkin_time DESC, id DESC
			LIMIT $2`,

		// Alerts
		"last_alert":   "SELECT MAX(sent_time) FROM alerts WHERE user_id = $1",
		"insert_alert": "INSERT INTO alerts (user_id, contact_id, sent_time, status) VALUES ($1, $2, $3, $4)",
		"recent_alerts": `SELECT id, user_id, contact_id, sent_time, status FROM alerts
			WHERE user_id = $1
			ORDER BY sent_time DESC, id DESC
			LIMIT $2`,
		"purge_alerts": "DELETE FROM alerts WHERE sent_time < $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}

// Column lists shared by the prepared statements and the store's scanners.
const (
	userColumns = `
	u.id, u.email, u.name, u.smtp_host, u.smtp_port, u.smtp_username, u.smtp_password, u.created_at,
	COALESCE(s.alert_threshold_minutes, 2880), COALESCE(s.enable_email_alert, TRUE), COALESCE(s.enable_sms_alert, FALSE)`

	userFrom = `
	FROM users u
	LEFT JOIN user_settings s ON s.user_id = u.id`

	ContactColumns = `id, user_id, name, email, phone, is_primary, created_at`
)
