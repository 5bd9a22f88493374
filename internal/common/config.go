package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment   string              `toml:"environment"` // "development" or "production"
	Server        ServerConfig        `toml:"server"`
	Backend       BackendConfig       `toml:"backend"`
	Storage       StorageConfig       `toml:"storage"`
	Logging       LoggingConfig       `toml:"logging"`
	Session       SessionConfig       `toml:"session"`
	Validation    ValidateConfig      `toml:"validate"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ServerConfig configures the local dashboard HTTP server.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// BackendConfig configures the remote connector backend the gateway talks to.
type BackendConfig struct {
	BaseURL           string `toml:"base_url"`            // Connector API base URL
	Timeout           string `toml:"timeout"`             // Per-request timeout, e.g. "30s"
	UserAgent         string `toml:"user_agent"`          // User agent sent on every request
	RequestsPerSecond int    `toml:"requests_per_second"` // Outbound rate limit (0 = unlimited)
	Burst             int    `toml:"burst"`               // Rate limiter burst size
}

// TimeoutDuration returns the parsed request timeout, falling back to 30s.
func (c *BackendConfig) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// SessionConfig controls the durable session mirror.
type SessionConfig struct {
	MirrorTTL string `toml:"mirror_ttl"` // e.g. "24h"; "0" disables mirroring
}

// MirrorTTLDuration returns the parsed mirror TTL. A zero duration disables
// session mirroring.
func (c *SessionConfig) MirrorTTLDuration() time.Duration {
	if c.MirrorTTL == "" {
		return 24 * time.Hour
	}
	if d, err := time.ParseDuration(c.MirrorTTL); err == nil && d >= 0 {
		return d
	}
	return 24 * time.Hour
}

// ValidateConfig controls scheduled connection re-validation.
type ValidateConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
}

// NotificationsConfig controls notification defaults.
type NotificationsConfig struct {
	DefaultDurationMs int `toml:"default_duration_ms"` // Auto-dismiss for notifications pushed without a duration (0 = sticky)
}

// NewDefaultConfig returns the built-in defaults. Config files, environment
// variables and CLI flags layer on top in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Backend: BackendConfig{
			BaseURL:           "http://localhost:8000",
			Timeout:           "30s",
			UserAgent:         "atlasdash/" + Version,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/atlasdash",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Session: SessionConfig{
			MirrorTTL: "24h",
		},
		Validation: ValidateConfig{
			Enabled:  true,
			Schedule: "*/5 * * * *",
		},
		Notifications: NotificationsConfig{
			DefaultDurationMs: 0,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ATLASDASH_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("ATLASDASH_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ATLASDASH_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if baseURL := os.Getenv("ATLASDASH_BACKEND_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if timeout := os.Getenv("ATLASDASH_BACKEND_TIMEOUT"); timeout != "" {
		config.Backend.Timeout = timeout
	}

	if badgerPath := os.Getenv("ATLASDASH_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("ATLASDASH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("ATLASDASH_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if ttl := os.Getenv("ATLASDASH_SESSION_MIRROR_TTL"); ttl != "" {
		config.Session.MirrorTTL = ttl
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority).
// Zero values mean the flag was not set.
func ApplyFlagOverrides(config *Config, port int, host string, backendURL string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if backendURL != "" {
		config.Backend.BaseURL = backendURL
	}
}

// Validate checks the resolved configuration for values that would fail at
// runtime.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if _, err := time.ParseDuration(c.Backend.Timeout); c.Backend.Timeout != "" && err != nil {
		return fmt.Errorf("invalid backend.timeout %q: %w", c.Backend.Timeout, err)
	}
	if c.Validation.Enabled {
		if err := ValidateCronSchedule(c.Validation.Schedule); err != nil {
			return fmt.Errorf("invalid validate.schedule: %w", err)
		}
	}
	return nil
}

// ValidateCronSchedule validates a cron schedule expression and enforces a
// minimum one-minute interval so the backend is not hammered.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("schedule is empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", schedule, err)
	}

	now := time.Now()
	first := sched.Next(now)
	second := sched.Next(first)
	if second.Sub(first) < time.Minute {
		return fmt.Errorf("schedule %q fires more often than once per minute", schedule)
	}

	return nil
}
