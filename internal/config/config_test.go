package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  port: 9000
database:
  path: `+filepath.Join(dir, "db", "test.db")+`
telegram:
  bot_token: ${VIGIL_TEST_TOKEN}
  admin_chat_id: 42
schedule:
  default_start_hour: 8
  default_end_hour: 20
`)
	t.Setenv("VIGIL_TEST_TOKEN", "tok-123")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "tok-123", cfg.Telegram.BotToken, "env placeholders expand")
	assert.Equal(t, int64(42), cfg.Telegram.AdminChatID)
	assert.Equal(t, 8, cfg.Schedule.DefaultStartHour)
	assert.Equal(t, 20, cfg.Schedule.DefaultEndHour)

	// The database directory is created on load.
	_, err = os.Stat(filepath.Dir(cfg.Database.Path))
	assert.NoError(t, err)
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "database:\n  path: "+filepath.Join(dir, "vigil.db")+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Schedule.DefaultStartHour)
	assert.Equal(t, 18, cfg.Schedule.DefaultEndHour)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
