package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "invoicing")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("SCHEDULER_LOCK_TTL", "")
	t.Setenv("ALLOWED_ORIGINS", " https://app.example.at , ,http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://postgres:postgres@db:5432/invoicing?sslmode=disable", cfg.DbDsn)
	assert.Equal(t, "default_super_secret_key", cfg.JwtSecret)
	assert.Equal(t, 15*time.Minute, cfg.SchedulerLockTTL)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, []string{"https://app.example.at", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoadReleaseRequiresSecrets(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CRON_SECRET", "")
	t.Setenv("APP_TIMEZONE", "UTC")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "CRON_SECRET")
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("SOME_INT", "nope")
	t.Setenv("SOME_DURATION", "90s")

	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
	assert.Equal(t, 90*time.Second, getEnvDuration("SOME_DURATION", time.Minute))
	assert.Equal(t, "x", getEnv("SURELY_UNSET_KEY_FOR_TEST", "x"))
}
