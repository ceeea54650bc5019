package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/shared/paths"
)

// ErrNotFound is returned by Get when a key has never been written
var ErrNotFound = errors.New("key not found")

// KV is a durable keyed byte store
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config selects and configures a backend
type Config struct {
	Backend string
	// Path is the data root; each backend keeps its own entry under it.
	// Empty badger and sqlite paths run in memory.
	Path string
}

// Open builds the configured backend
func Open(cfg Config, logger *logging.Logger) (KV, error) {
	layout := paths.Layout{Root: cfg.Path}

	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		if cfg.Path == "" {
			return nil, errors.New("file storage requires a path")
		}
		return NewFile(layout.Snapshots())
	case BackendBadger:
		if cfg.Path == "" {
			return NewBadger(BadgerConfig{InMemory: true}, logger)
		}
		return NewBadger(BadgerConfig{Path: layout.Badger(), SyncWrites: true}, logger)
	case BackendSQLite:
		if cfg.Path == "" {
			return NewSQLite(":memory:")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return NewSQLite(layout.SQLite())
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
