// Package emulator assembles the device: it restores or creates the state,
// builds the store, attaches the persistence writer, metrics and event
// publisher as listeners, and runs the clock.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/catalog"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/clock"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/session"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/store"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/storage"
)

// Publisher receives every new state; *events.Publisher satisfies it
type Publisher interface {
	Publish(*system.State)
	Close() error
}

// Options wires an Emulator. Storage is required; everything else has a
// default.
type Options struct {
	Storage    storage.KV
	StorageKey string
	Compress   bool
	Catalog    *catalog.Catalog
	Clock      clock.Config
	Publisher  Publisher
	Now        func() time.Time
	Logger     *logging.Logger
	Metrics    *monitoring.Metrics
}

// Emulator owns the running device
type Emulator struct {
	kv        storage.KV
	store     *store.Store
	driver    *clock.Driver
	writer    *session.Writer
	publisher Publisher
	log       *logging.Logger
	restored  bool

	unsubscribe []func()
	closeOnce   sync.Once
	closeErr    error
}

// New restores the last saved state (or factory defaults) and starts the
// clock.
func New(ctx context.Context, opts Options) (*Emulator, error) {
	if opts.Storage == nil {
		return nil, errors.New("emulator requires a storage backend")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Clock == (clock.Config{}) {
		opts.Clock = clock.DefaultConfig()
	}
	cat := catalog.Builtin()
	if opts.Catalog != nil {
		cat = *opts.Catalog
	}
	log := logging.Or(opts.Logger).Component("emulator")

	defaults := func() *system.State {
		return system.Default(opts.Now().UnixMilli(), cat.Apps, cat.HomeGrid)
	}

	manager := session.NewManager(opts.Storage, session.Options{
		Key:      opts.StorageKey,
		Compress: opts.Compress,
		Defaults: defaults,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
	})

	initial, restored := manager.Load(ctx)
	if !restored {
		initial = defaults()
	}

	e := &Emulator{
		kv:        opts.Storage,
		publisher: opts.Publisher,
		log:       log,
		restored:  restored,
	}

	e.store = store.New(initial, store.Options{
		Now:     opts.Now,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})

	e.writer = session.NewWriter(manager, session.WriterOptions{
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})
	e.unsubscribe = append(e.unsubscribe, e.store.Subscribe(e.writer.Submit))

	if opts.Metrics != nil {
		observe := deviceObserver(opts.Metrics)
		observe(initial)
		e.unsubscribe = append(e.unsubscribe, e.store.Subscribe(observe))
	}
	if opts.Publisher != nil {
		e.unsubscribe = append(e.unsubscribe, e.store.Subscribe(opts.Publisher.Publish))
	}

	driver, err := clock.New(e.store, opts.Clock, opts.Logger)
	if err != nil {
		e.writer.Close()
		return nil, err
	}
	if err := driver.Start(); err != nil {
		e.writer.Close()
		return nil, fmt.Errorf("failed to start clock: %w", err)
	}
	e.driver = driver

	log.Info("Emulator started",
		zap.Bool("restored", restored),
		zap.Bool("booted", initial.Booted),
		zap.Int("apps", len(initial.Apps)))
	return e, nil
}

// Store returns the dispatch handle
func (e *Emulator) Store() store.Handle {
	return e.store
}

// Restored reports whether the state came from a saved snapshot
func (e *Emulator) Restored() bool {
	return e.restored
}

// PersistenceState reports the snapshot breaker state
func (e *Emulator) PersistenceState() resilience.State {
	return e.writer.Breaker().State()
}

// Close stops the clock, flushes the pending snapshot and releases the
// storage backend and publisher.
func (e *Emulator) Close() error {
	e.closeOnce.Do(func() {
		var errs []error
		if err := e.driver.Stop(); err != nil {
			errs = append(errs, err)
		}
		for _, unsubscribe := range e.unsubscribe {
			unsubscribe()
		}
		e.writer.Close()

		if e.publisher != nil {
			if err := e.publisher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
			}
		}
		if err := e.kv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}

		e.closeErr = errors.Join(errs...)
		e.log.Info("Emulator stopped")
	})
	return e.closeErr
}

func deviceObserver(metrics *monitoring.Metrics) store.Listener {
	return func(s *system.State) {
		metrics.ObserveDevice(monitoring.Device{
			BatteryLevel: s.Battery.Level,
			Charging:     s.Battery.Charging,
			Running:      len(s.Running),
			Recents:      len(s.Recents),
			Unread:       system.UnreadCount(s),
			Booted:       s.Booted,
			Locked:       s.Locked,
		})
	}
}
