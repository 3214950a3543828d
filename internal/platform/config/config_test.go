package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 2*time.Minute, c.ResumeThreshold)
	assert.Equal(t, time.Second, c.FocusDebounce)
	assert.Equal(t, 587, c.SMTPPort)
}

func TestApplyEnv_OverridesDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := c.applyEnv(lookupFrom(map[string]string{
		"PORT":             "9090",
		"DB_DSN":           "postgres://x",
		"SMTP_PORT":        "2525",
		"RESUME_THRESHOLD": "5m",
		"LOG_LEVEL":        "  ",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Addr)
	assert.Equal(t, "postgres://x", c.DatabaseDSN)
	assert.Equal(t, 2525, c.SMTPPort)
	assert.Equal(t, 5*time.Minute, c.ResumeThreshold)
	assert.Equal(t, "info", c.LogLevel, "blank values keep the default")
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.Error(t, c.applyEnv(lookupFrom(map[string]string{"SMTP_PORT": "abc"})))
	require.Error(t, c.applyEnv(lookupFrom(map[string]string{"FOCUS_DEBOUNCE": "soon"})))
}

func TestParseFlags_WinOverEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.NoError(t, c.applyEnv(lookupFrom(map[string]string{"PORT": "9090"})))
	require.NoError(t, c.parseFlags([]string{"-a", ":7000", "-tz", "UTC"}))

	assert.Equal(t, ":7000", c.Addr)
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=from-dotenv\n"), 0o600))

	// godotenv no pisa variables ya definidas
	t.Setenv("SQLITE_PATH", "reminders.db")
	os.Unsetenv("APP_NAME")
	t.Cleanup(func() { os.Unsetenv("APP_NAME") })

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.AppName)
	assert.Equal(t, "reminders.db", cfg.SQLitePath)
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"), nil)
	require.NoError(t, err)
}

func TestLocation_Local(t *testing.T) {
	c := Config{ReminderTZ: "local"}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}
