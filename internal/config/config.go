// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and LINEUP_* environment variables over New().
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Preference store backends accepted by PrefsBackend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BackendURL is the base URL of the team generation backend.
	BackendURL string `koanf:"backend_url"`

	// RequestTimeoutMS bounds every backend request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// StartDelayMS is the pause between the board reset and the first draw.
	StartDelayMS int `koanf:"start_delay_ms"`

	// SettleDelayMS is how long a drawn token stays in flight before it retires.
	SettleDelayMS int `koanf:"settle_delay_ms"`

	// CompletionResetDelayMS is how long "Generated" stays on the trigger.
	CompletionResetDelayMS int `koanf:"completion_reset_delay_ms"`

	// TeamALabel and TeamBLabel are the fallback team names.
	TeamALabel string `koanf:"team_a_label"`
	TeamBLabel string `koanf:"team_b_label"`

	// EventQueueSize bounds the in-memory reveal event queue.
	EventQueueSize int `koanf:"queue_size"`

	// PrefsBackend selects the preference store: memory, file or redis.
	PrefsBackend string `koanf:"prefs_backend"`
	PrefsFile    string `koanf:"prefs_file"`
	RedisURL     string `koanf:"redis_url"`

	// PrefsTTLDays is the lifetime of a stored preference.
	PrefsTTLDays int `koanf:"prefs_ttl_days"`

	// AllowedOrigins lists origins accepted for CORS and websocket upgrades.
	// Empty allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// WSSendBuffer is the per-client outbound websocket buffer.
	WSSendBuffer int `koanf:"ws_send_buffer"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		BackendURL:             "http://localhost:5000",
		RequestTimeoutMS:       10_000,
		StartDelayMS:           1000,
		SettleDelayMS:          4000,
		CompletionResetDelayMS: 2000,
		TeamALabel:             "Team 1",
		TeamBLabel:             "Team 2",
		EventQueueSize:         1024,
		PrefsBackend:           BackendMemory,
		PrefsFile:              "lineup-prefs.yaml",
		PrefsTTLDays:           30,
		WSSendBuffer:           256,
	}
}

// Validate reports the first invalid field as an ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.BackendURL) == "":
		return fmt.Errorf("%w: backend_url must not be empty", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.StartDelayMS < 0, c.SettleDelayMS < 0, c.CompletionResetDelayMS < 0:
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	case c.EventQueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.PrefsTTLDays <= 0:
		return fmt.Errorf("%w: prefs_ttl_days must be positive", ErrInvalidConfig)
	}

	switch c.PrefsBackend {
	case BackendMemory:
	case BackendFile:
		if strings.TrimSpace(c.PrefsFile) == "" {
			return fmt.Errorf("%w: prefs_file is required for the file backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("%w: redis_url is required for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown prefs_backend %q", ErrInvalidConfig, c.PrefsBackend)
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

func (c *Config) StartDelay() time.Duration {
	return time.Duration(c.StartDelayMS) * time.Millisecond
}

func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

func (c *Config) CompletionResetDelay() time.Duration {
	return time.Duration(c.CompletionResetDelayMS) * time.Millisecond
}

// PrefsTTL converts PrefsTTLDays into a duration.
func (c *Config) PrefsTTL() time.Duration {
	return time.Duration(c.PrefsTTLDays) * 24 * time.Hour
}
