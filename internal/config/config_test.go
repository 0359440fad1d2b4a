package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "devpulse"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, ".config", "devpulse", DefaultDBName), cfg.DBPath())
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultWatch, cfg.Watch)
	assert.Equal(t, DefaultTelemetry, cfg.Telemetry)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devpulse.yaml")
	content := `data_dir: ` + dir + `
db_name: test.db
output:
  color: false
  width: 100
watch:
  interval: 30s
  remind_after_hour: 20
  daily_goal_minutes: 90
telemetry:
  enabled: true
  endpoint: collector:4317
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "test.db"), cfg.DBPath())
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, 100, cfg.Output.Width)
	assert.Equal(t, 30*time.Second, cfg.Watch.Interval)
	assert.Equal(t, 20, cfg.Watch.RemindAfterHour)
	assert.Equal(t, 90.0, cfg.Watch.DailyGoalMinutes)
	assert.True(t, cfg.Watch.Notify, "unset keys keep their defaults")
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEVPULSE_WATCH_INTERVAL", "45s")
	t.Setenv("DEVPULSE_DB_NAME", "env.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Watch.Interval)
	assert.Equal(t, "env.db", cfg.DBName)
}

func TestLoad_RejectsBadReminderHour(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch:\n  remind_after_hour: 25\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "remind_after_hour")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "x", "y"), expandPath("~/x/y"))
	assert.Equal(t, home, expandPath("~"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, "rel/~/path", expandPath("rel/~/path"))
}
