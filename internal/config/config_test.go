package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tasktrack", cfg.AppName)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 10*time.Second, cfg.Health.ProbeInterval)
	assert.True(t, cfg.Recalc.Enabled)
	assert.Equal(t, "0 */15 * * * *", cfg.Recalc.Schedule)
	assert.Equal(t, 100, cfg.Recalc.PageSize)
	assert.Equal(t, 10*time.Minute, cfg.Recalc.LockTTL)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RECALC_SCHEDULE", "@every 1m")
	t.Setenv("RECALC_PAGE_SIZE", "25")
	t.Setenv("RECALC_LOCK_TTL", "30")
	t.Setenv("RECALC_TIMEOUT", "20s")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, "@every 1m", cfg.Recalc.Schedule)
	assert.Equal(t, 25, cfg.Recalc.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Recalc.LockTTL)
	assert.Equal(t, 2*time.Second, cfg.Context.RequestTimeout)
}

func TestLoad_RejectsBadPageSize(t *testing.T) {
	t.Setenv("RECALC_PAGE_SIZE", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECALC_PAGE_SIZE")
}

func TestLoad_IgnoresUnparsableValues(t *testing.T) {
	t.Setenv("SERVER_ENABLE_PPROF", "maybe")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.HTTP.EnablePprof)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoad_ValidatesRecalcSettings(t *testing.T) {
	t.Setenv("RECALC_SCHEDULE", "every quarter hour")
	t.Setenv("RECALC_LOCK_TTL", "1m")
	t.Setenv("RECALC_TIMEOUT", "5m")
	t.Setenv("MAX_RETRY_ATTEMPTS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECALC_SCHEDULE")
	assert.Contains(t, err.Error(), "RECALC_LOCK_TTL (1m0s) must exceed RECALC_TIMEOUT (5m0s)")
	assert.Contains(t, err.Error(), "MAX_RETRY_ATTEMPTS")
}

func TestLoad_DisabledRecalcSkipsSchedule(t *testing.T) {
	t.Setenv("RECALC_ENABLED", "false")
	t.Setenv("RECALC_SCHEDULE", "not a schedule")

	_, err := Load()
	assert.NoError(t, err)
}
