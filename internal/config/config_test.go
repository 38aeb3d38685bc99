package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/focusboard/internal/config"
	"github.com/ogulcanaydogan/focusboard/pkg/ledger"
	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "15s", cfg.Server.ReadTimeout)
	assert.Equal(t, "30s", cfg.Server.WriteTimeout)
	assert.Equal(t, int64(900), cfg.Usage.DefaultLimit)
	assert.Empty(t, cfg.Usage.Limits)
	assert.InDelta(t, 80.0, cfg.Usage.AlertThresholdPct, 0.001)
	assert.Equal(t, int64(650000), cfg.Accounting.BlueReturnDeduction)
	assert.Equal(t, int64(480000), cfg.Accounting.DependentIncomeLimit)
	assert.Equal(t, "Asia/Tokyo", cfg.App.Timezone)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Integrations.Calendar.Enabled)
	assert.Equal(t, "receipts", cfg.Integrations.Storage.Bucket)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	data := []byte(`
storage:
  path: /tmp/test.db
server:
  listen: ":9090"
usage:
  limits:
    vision: 50
accounting:
  blue_return_deduction: 100000
app:
  timezone: UTC
integrations:
  calendar:
    enabled: true
    token: abc
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Storage.Path)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, int64(50), cfg.Usage.Limits["vision"])
	assert.NotContains(t, cfg.Usage.Limits, "tasks")
	assert.Equal(t, int64(100000), cfg.Accounting.BlueReturnDeduction)
	assert.True(t, cfg.Integrations.Calendar.Enabled)
	assert.Equal(t, "abc", cfg.Integrations.Calendar.Token)
	assert.Equal(t, "primary", cfg.Integrations.Calendar.CalendarID)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FB_LOGGING_LEVEL", "error")
	t.Setenv("FB_SERVER_LISTEN", ":7070")
	t.Setenv("FB_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("FB_USAGE_LIMITS_GMAIL", "12")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, int64(12), cfg.Usage.Limits["gmail"])
}

func TestLoad_DefaultLimitAppliesToUnsetTypes(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FB_USAGE_DEFAULT_LIMIT", "500")
	t.Setenv("FB_USAGE_LIMITS_VISION", "40")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(500), cfg.Usage.DefaultLimit)
	assert.Equal(t, map[string]int64{"vision": 40}, cfg.Usage.Limits)

	limits, err := ledger.ParseLimits(cfg.Usage.DefaultLimit, cfg.Usage.Limits)
	require.NoError(t, err)
	assert.Equal(t, int64(40), limits.For(model.APIVision))
	assert.Equal(t, int64(500), limits.For(model.APICalendar))
	assert.Equal(t, int64(500), limits.For(model.APITasks))
	assert.Equal(t, int64(500), limits.For(model.APIGmail))
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FB_APP_TIMEZONE=UTC\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FB_APP_TIMEZONE") })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.App.Timezone)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("invalid: [yaml"), 0o644))

	_, err := config.Load(cfgPath)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"timezone": "app:\n  timezone: Mars/Olympus\n",
		"duration": "server:\n  read_timeout: soon\n",
		"limit":    "usage:\n  limits:\n    vision: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 15*time.Second, config.Duration("15s"))
	assert.Equal(t, time.Duration(0), config.Duration("bad"))
}
