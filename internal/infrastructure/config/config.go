package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Host      HostConfig
	Sync      SyncConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8600"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// HostConfig holds view-host process endpoints.
type HostConfig struct {
	EventsURL      string        `envconfig:"VIEWHOST_EVENTS_URL" default:"ws://127.0.0.1:9400/events"`
	ControlURL     string        `envconfig:"VIEWHOST_CONTROL_URL" default:"http://127.0.0.1:9400"`
	DialTimeout    time.Duration `envconfig:"VIEWHOST_DIAL_TIMEOUT" default:"5s"`
	ControlTimeout time.Duration `envconfig:"VIEWHOST_CONTROL_TIMEOUT" default:"10s"`
	RetryMax       int           `envconfig:"VIEWHOST_RETRY_MAX" default:"2"`
}

// SyncConfig holds measurement and lifecycle tuning.
type SyncConfig struct {
	StallTimeout       time.Duration `envconfig:"SYNC_STALL_TIMEOUT" default:"10s"`
	FooterReserve      float64       `envconfig:"SYNC_FOOTER_RESERVE" default:"28"`
	MountRecheckDelay  time.Duration `envconfig:"SYNC_MOUNT_RECHECK_DELAY" default:"50ms"`
	MaxDetachedRetries int           `envconfig:"SYNC_MAX_DETACHED_RETRIES" default:"5"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8600",
			Host: "0.0.0.0",
		},
		Host: HostConfig{
			EventsURL:      "ws://127.0.0.1:9400/events",
			ControlURL:     "http://127.0.0.1:9400",
			DialTimeout:    5 * time.Second,
			ControlTimeout: 10 * time.Second,
			RetryMax:       2,
		},
		Sync: SyncConfig{
			StallTimeout:       10 * time.Second,
			FooterReserve:      28,
			MountRecheckDelay:  50 * time.Millisecond,
			MaxDetachedRetries: 5,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
