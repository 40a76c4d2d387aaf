// Package config provides centralized configuration loaded from environment
// variables (and a .env file when present). Shared by cmd/api and
// cmd/silemactl.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/silema/silema/internal/domain"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DBDriver       string        `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	SQLitePath     string        `envconfig:"SQLITE_PATH" default:"./data/silema.db"`
	DBPoolMinConns int           `envconfig:"DB_POOL_MIN_CONNS" default:"2"`
	DBPoolMaxConns int           `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
	DBPoolMaxLife  time.Duration `envconfig:"DB_POOL_MAX_LIFE" default:"30m"`

	// API server
	APIHost     string `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort     int    `envconfig:"API_PORT" default:"8000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // development, staging, production
	APIToken    string `envconfig:"API_TOKEN"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json|console

	// CORS
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	// Rate limiting
	RateLimitEnabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`

	// Cache
	CacheEnabled bool `envconfig:"CACHE_ENABLED" default:"true"`

	// Monitor
	CheckInterval   time.Duration `envconfig:"CHECK_INTERVAL" default:"1m"`
	StartupDelay    time.Duration `envconfig:"STARTUP_DELAY" default:"5s"`
	NotifyTimeout   time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"30s"`
	CycleWorkers    int           `envconfig:"CYCLE_WORKERS" default:"4"`
	DisplayTimezone string        `envconfig:"DISPLAY_TIMEZONE" default:"Asia/Shanghai"`

	// Mail
	MailFromName    string `envconfig:"MAIL_FROM_NAME" default:"死了吗"`
	NotifierDryRun  bool   `envconfig:"NOTIFIER_DRY_RUN" default:"false"`
	SMTPDefaultHost string `envconfig:"SMTP_DEFAULT_HOST"`
	SMTPDefaultPort int    `envconfig:"SMTP_DEFAULT_PORT" default:"465"`
	SMTPDefaultUser string `envconfig:"SMTP_DEFAULT_USERNAME"`
	SMTPDefaultPass string `envconfig:"SMTP_DEFAULT_PASSWORD"`

	// Maintenance
	AlertRetention  time.Duration `envconfig:"ALERT_RETENTION" default:"2160h"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1h"`
}

// Load reads .env (if present) and then the environment, and validates the
// result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL must be set when DB_DRIVER=postgres"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH must be set when DB_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver))
	}

	if c.CheckInterval <= 0 {
		errs = append(errs, errors.New("CHECK_INTERVAL must be positive"))
	}
	if c.StartupDelay < 0 {
		errs = append(errs, errors.New("STARTUP_DELAY must not be negative"))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}
	if c.CycleWorkers < 1 {
		errs = append(errs, errors.New("CYCLE_WORKERS must be at least 1"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("CLEANUP_INTERVAL must be positive"))
	}
	if c.AlertRetention < 0 {
		errs = append(errs, errors.New("ALERT_RETENTION must not be negative"))
	}
	if c.RateLimitEnabled && (c.RateLimitRequests < 1 || c.RateLimitWindow <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SMTPFallback is the system mail account used for users without their own
// credentials. It is the zero value when not configured.
func (c *Config) SMTPFallback() domain.SMTPConfig {
	return domain.SMTPConfig{
		Host:     c.SMTPDefaultHost,
		Port:     c.SMTPDefaultPort,
		Username: c.SMTPDefaultUser,
		Password: c.SMTPDefaultPass,
	}
}
