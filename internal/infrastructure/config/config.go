package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Clock     ClockConfig
	Catalog   CatalogConfig
	Events    EventsConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

// StorageConfig selects where snapshots are kept.
type StorageConfig struct {
	Backend  string `envconfig:"STORAGE_BACKEND" default:"file"`
	Path     string `envconfig:"STORAGE_PATH" default:"./data"`
	Key      string `envconfig:"STORAGE_KEY" default:"android_emulator_state_v1"`
	Compress bool   `envconfig:"STORAGE_COMPRESS" default:"false"`
}

// ClockConfig holds the tick driver timings.
type ClockConfig struct {
	TickInterval time.Duration `envconfig:"CLOCK_TICK_INTERVAL" default:"1s"`
	BootDelay    time.Duration `envconfig:"CLOCK_BOOT_DELAY" default:"1500ms"`
}

// CatalogConfig points at an optional app catalog file.
type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH"`
}

// EventsConfig holds the optional NATS publisher settings. An empty URL
// disables publishing.
type EventsConfig struct {
	URL     string `envconfig:"NATS_URL"`
	Subject string `envconfig:"EVENTS_SUBJECT" default:"phoneos.state"`
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

var backends = map[string]bool{"memory": true, "file": true, "badger": true, "sqlite": true}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Validate rejects values the emulator cannot run with.
func (c *Config) Validate() error {
	if !backends[c.Storage.Backend] {
		return fmt.Errorf("invalid config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "file" && c.Storage.Path == "" {
		return fmt.Errorf("invalid config: file storage requires STORAGE_PATH")
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("invalid config: STORAGE_KEY must not be empty")
	}
	if c.Clock.TickInterval <= 0 {
		return fmt.Errorf("invalid config: tick interval must be positive, got %s", c.Clock.TickInterval)
	}
	if c.Clock.BootDelay < 0 {
		return fmt.Errorf("invalid config: boot delay must not be negative, got %s", c.Clock.BootDelay)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid config: rate limit needs positive rps and burst")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    "./data",
			Key:     "android_emulator_state_v1",
		},
		Clock: ClockConfig{
			TickInterval: time.Second,
			BootDelay:    1500 * time.Millisecond,
		},
		Events: EventsConfig{
			Subject: "phoneos.state",
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
