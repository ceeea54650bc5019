package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/storage"
)

// DefaultKey is the storage key used when none is configured
const DefaultKey = "android_emulator_state_v1"

// zstd frame magic number, little endian
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Options configures a Manager
type Options struct {
	Key      string
	Compress bool
	// Defaults supplies the base that a snapshot is decoded over, so
	// fields missing from older snapshots keep factory values
	Defaults func() *system.State
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
}

// Manager loads and saves state snapshots
type Manager struct {
	kv       storage.KV
	key      string
	compress bool
	defaults func() *system.State
	log      *logging.Logger
	metrics  *monitoring.Metrics

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewManager creates a snapshot manager over kv
func NewManager(kv storage.KV, opts Options) *Manager {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Defaults == nil {
		opts.Defaults = func() *system.State {
			return system.Default(time.Now().UnixMilli(), nil, nil)
		}
	}

	// nil writer/reader: only the stateless EncodeAll/DecodeAll are used
	encoder, _ := zstd.NewWriter(nil)
	decoder, _ := zstd.NewReader(nil)

	return &Manager{
		kv:       kv,
		key:      opts.Key,
		compress: opts.Compress,
		defaults: opts.Defaults,
		log:      logging.Or(opts.Logger).Component("session"),
		metrics:  opts.Metrics,
		encoder:  encoder,
		decoder:  decoder,
	}
}

// Key returns the storage key snapshots are written under
func (m *Manager) Key() string {
	return m.key
}

// Load reads the snapshot. The bool is false when there is nothing usable;
// the reason is logged, never returned.
func (m *Manager) Load(ctx context.Context) (*system.State, bool) {
	timer := monitoring.NewTimer(m.metrics, "load")

	raw, err := m.kv.Get(ctx, m.key)
	if errors.Is(err, storage.ErrNotFound) {
		timer.Stop("missing")
		m.log.Info("No saved state", zap.String("key", m.key))
		return nil, false
	}
	if err != nil {
		timer.Stop("error")
		m.log.Warn("Failed to read saved state", zap.String("key", m.key), zap.Error(err))
		return nil, false
	}

	state, err := m.Decode(raw)
	if err != nil {
		timer.Stop("corrupt")
		m.log.Warn("Discarding corrupt saved state", zap.String("key", m.key), zap.Error(err))
		return nil, false
	}

	timer.Stop("ok")
	m.log.Info("Restored saved state",
		zap.String("key", m.key),
		zap.Int("notifications", len(state.Notifications)),
		zap.Int("recents", len(state.Recents)))
	return state, true
}

// Save writes a snapshot of s. Failures are logged and dropped.
func (m *Manager) Save(ctx context.Context, s *system.State) {
	if err := m.save(ctx, s); err != nil {
		m.log.Warn("Failed to save state", zap.String("key", m.key), zap.Error(err))
	}
}

func (m *Manager) save(ctx context.Context, s *system.State) error {
	timer := monitoring.NewTimer(m.metrics, "save")

	data, err := m.Encode(s)
	if err != nil {
		timer.Stop("error")
		return err
	}
	if err := m.kv.Set(ctx, m.key, data); err != nil {
		timer.Stop("error")
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	timer.Stop("ok")
	return nil
}

// Encode produces the persisted form of s: no running apps, at most
// MaxRecents recents.
func (m *Manager) Encode(s *system.State) ([]byte, error) {
	snap := *s
	snap.Running = []system.RunningApp{}
	if len(snap.Recents) > system.MaxRecents {
		snap.Recents = snap.Recents[:system.MaxRecents]
	}

	data, err := sonic.ConfigStd.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if m.compress {
		data = m.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	}
	return data, nil
}

// Decode parses a snapshot in either plain or compressed form
func (m *Manager) Decode(raw []byte) (*system.State, error) {
	if bytes.HasPrefix(raw, zstdMagic) {
		plain, err := m.decoder.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
		}
		raw = plain
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("empty snapshot")
	}

	state := m.defaults()
	if err := sonic.ConfigStd.Unmarshal(trimmed, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	normalize(state)
	return state, nil
}

// normalize repairs values a hand-edited or older snapshot may carry
func normalize(s *system.State) {
	s.Running = []system.RunningApp{}
	if s.Recents == nil {
		s.Recents = []system.RunningApp{}
	}
	if len(s.Recents) > system.MaxRecents {
		s.Recents = s.Recents[:system.MaxRecents]
	}
	if s.Notifications == nil {
		s.Notifications = []system.Notification{}
	}
	if s.Apps == nil {
		s.Apps = []system.AppSpec{}
	}
	if s.HomeGrid == nil {
		s.HomeGrid = []system.AppID{}
	}
	if s.QuickSettings == nil {
		s.QuickSettings = system.QuickSettings{}
	}
	for _, key := range system.QuickSettingKeys {
		if _, ok := s.QuickSettings[key]; !ok {
			s.QuickSettings[key] = false
		}
	}
	if !s.Theme.Valid() {
		s.Theme = system.ThemeDark
	}
	s.Brightness = clamp(s.Brightness)
	s.Volume = clamp(s.Volume)
	s.Battery.Level = clamp(s.Battery.Level)
}

func clamp(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
