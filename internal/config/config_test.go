package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", t.TempDir()+"/silema.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 8000, cfg.APIPort)
	assert.Equal(t, time.Minute, cfg.CheckInterval)
	assert.Equal(t, 5*time.Second, cfg.StartupDelay)
	assert.Equal(t, 30*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 4, cfg.CycleWorkers)
	assert.Equal(t, "Asia/Shanghai", cfg.DisplayTimezone)
	assert.Equal(t, 90*24*time.Hour, cfg.AlertRetention)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.SMTPFallback().Complete())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/silema")
	t.Setenv("CHECK_INTERVAL", "30s")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SMTP_DEFAULT_HOST", "smtp.example.com")
	t.Setenv("SMTP_DEFAULT_USERNAME", "bot@example.com")
	t.Setenv("SMTP_DEFAULT_PASSWORD", "pw")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.SMTPFallback().Complete())
	assert.Equal(t, 465, cfg.SMTPFallback().Port)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DBDriver:        DriverSQLite,
			SQLitePath:      "silema.db",
			CheckInterval:   time.Minute,
			NotifyTimeout:   time.Second,
			CycleWorkers:    1,
			CleanupInterval: time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"postgres without url", func(c *Config) { c.DBDriver = DriverPostgres }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "unsupported DB_DRIVER"},
		{"zero interval", func(c *Config) { c.CheckInterval = 0 }, "CHECK_INTERVAL"},
		{"zero workers", func(c *Config) { c.CycleWorkers = 0 }, "CYCLE_WORKERS"},
		{"bad rate limit", func(c *Config) { c.RateLimitEnabled = true }, "RATE_LIMIT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
