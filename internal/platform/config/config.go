// Package config arma la configuración del servicio: defaults, archivo .env opcional,
// variables de entorno y por último flags de línea de comandos.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr string

	// Storage: DB_DSN (postgres) tiene prioridad sobre SQLITE_PATH. Sin ninguno => in-memory.
	DatabaseDSN string
	SQLitePath  string

	LogLevel  string
	LogFormat string
	AppName   string

	JWTSecret string

	OdinBaseURL string
	OdinAPIKey  string

	FCMCredentialsFile string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Zona horaria en la que se interpretan los HH:MM.
	ReminderTZ string

	ResumeThreshold   time.Duration
	FocusDebounce     time.Duration
	HeartbeatInterval time.Duration
}

func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.AppName = "medication-reminders"
	c.SMTPPort = 587
	c.ReminderTZ = "Local"
	c.ResumeThreshold = 2 * time.Minute
	c.FocusDebounce = 1 * time.Second
	c.HeartbeatInterval = 30 * time.Second
}

// Load aplica defaults -> .env (si existe envFile) -> env -> flags.
func Load(envFile string, args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		c.Addr = ":" + strings.TrimSpace(v)
	}
	str("DB_DSN", &c.DatabaseDSN)
	str("SQLITE_PATH", &c.SQLitePath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("APP_NAME", &c.AppName)
	str("JWT_SECRET", &c.JWTSecret)
	str("ODIN_BASE_URL", &c.OdinBaseURL)
	str("ODIN_API_KEY", &c.OdinAPIKey)
	str("FCM_CREDENTIALS_FILE", &c.FCMCredentialsFile)
	str("SMTP_HOST", &c.SMTPHost)
	str("SMTP_USER", &c.SMTPUser)
	str("SMTP_PASSWORD", &c.SMTPPassword)
	str("SMTP_FROM", &c.SMTPFrom)
	str("REMINDER_TZ", &c.ReminderTZ)

	if v, ok := lookup("SMTP_PORT"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.SMTPPort = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"RESUME_THRESHOLD", &c.ResumeThreshold},
		{"FOCUS_DEBOUNCE", &c.FocusDebounce},
		{"HEARTBEAT_INTERVAL", &c.HeartbeatInterval},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	return nil
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.Addr, "a", c.Addr, "address and port to run server")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "postgres DSN")
	fs.StringVar(&c.SQLitePath, "sqlite", c.SQLitePath, "sqlite database file")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug|info|warn|error")
	fs.StringVar(&c.ReminderTZ, "tz", c.ReminderTZ, "IANA time zone for reminder times")

	return fs.Parse(args)
}

// Location resuelve ReminderTZ; "Local" o vacío => time.Local.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.ReminderTZ)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}
