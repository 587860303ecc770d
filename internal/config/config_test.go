package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "data/workouts.json", cfg.Storage.FilePath)
	assert.True(t, cfg.Storage.CreateIfMissing)
	assert.Equal(t, 8, cfg.Reminders.Hour)
	assert.Equal(t, 24*time.Hour, cfg.Backup.Interval)
	assert.Equal(t, ":8080", cfg.HTTP.Address)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("STORAGE_DSN", "data/workouts.db")
	t.Setenv("REMINDERS_HOUR", "6")
	t.Setenv("BACKUP_INTERVAL", "90m")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "data/workouts.db", cfg.Storage.DSN)
	assert.Equal(t, 6, cfg.Reminders.Hour)
	assert.Equal(t, 90*time.Minute, cfg.Backup.Interval)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadLegacyEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "legacy-token")
	t.Setenv("FILENAME", "old/workouts.json")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", cfg.Discord.Token)
	assert.Equal(t, "old/workouts.json", cfg.Storage.FilePath)

	// The new names win over the legacy ones
	t.Setenv("DISCORD_TOKEN", "new-token")
	cfg, err = Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "new-token", cfg.Discord.Token)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
storage:
  backend: mongo
  mongo_uri: mongodb://localhost:27017
discord:
  app_id: "1234"
reminders:
  enabled: false
  hour: 19
backup:
  bucket: workouts
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.Storage.Backend)
	assert.Equal(t, "workoutbot", cfg.Storage.MongoDatabase)
	assert.Equal(t, "1234", cfg.Discord.AppID)
	assert.False(t, cfg.Reminders.Enabled)
	assert.Equal(t, 19, cfg.Reminders.Hour)
	assert.Equal(t, "workouts", cfg.Backup.Bucket)

	// Explicit file path
	cfg, err = Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 19, cfg.Reminders.Hour)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	_, err := Load(t.TempDir())
	require.ErrorContains(t, err, "storage.dsn")

	t.Setenv("STORAGE_BACKEND", "redis")
	_, err = Load(t.TempDir())
	require.ErrorContains(t, err, "unknown storage backend")

	t.Setenv("STORAGE_BACKEND", "file")
	t.Setenv("REMINDERS_HOUR", "25")
	_, err = Load(t.TempDir())
	require.Error(t, err)

	_, err = Config{Timezone: "Mars/Olympus"}.Location()
	require.Error(t, err)
}
