// Package config provides 12-factor configuration for the emulator server.
//
// Configuration is loaded from environment variables with defaults; the
// server also reads an optional .env file first and lets CLI flags
// override the result.
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS
//   - STORAGE_BACKEND (memory|file|badger|sqlite), STORAGE_PATH, STORAGE_KEY, STORAGE_COMPRESS
//   - CLOCK_TICK_INTERVAL, CLOCK_BOOT_DELAY
//   - CATALOG_PATH
//   - NATS_URL, EVENTS_SUBJECT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
package config
