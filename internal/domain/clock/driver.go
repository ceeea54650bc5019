// Package clock drives time-based actions: a TICK every interval and a
// one-shot BOOT shortly after start. Jobs only dispatch; all state changes
// happen in the store.
package clock

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/store"
	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
)

var ErrAlreadyStarted = errors.New("clock driver already started")

// Config holds the driver timings
type Config struct {
	TickInterval time.Duration
	BootDelay    time.Duration
}

// DefaultConfig matches the stock shell: one tick per second, boot after 1.5s
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second,
		BootDelay:    1500 * time.Millisecond,
	}
}

// Driver owns the gocron scheduler
type Driver struct {
	scheduler gocron.Scheduler
	handle    store.Handle
	cfg       Config
	log       *logging.Logger

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a stopped driver
func New(handle store.Handle, cfg Config, logger *logging.Logger) (*Driver, error) {
	defaults := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}
	if cfg.BootDelay < 0 {
		cfg.BootDelay = defaults.BootDelay
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Driver{
		scheduler: s,
		handle:    handle,
		cfg:       cfg,
		log:       logging.Or(logger).Component("clock"),
	}, nil
}

// Start schedules the tick job, and the boot job when the device has not
// booted yet, then starts the scheduler.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return ErrAlreadyStarted
	}

	_, err := d.scheduler.NewJob(
		gocron.DurationJob(d.cfg.TickInterval),
		gocron.NewTask(d.tick),
		gocron.WithName("tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create tick job: %w", err)
	}

	if !d.handle.State().Booted {
		_, err = d.scheduler.NewJob(
			gocron.OneTimeJob(d.bootAt()),
			gocron.NewTask(d.boot),
			gocron.WithName("boot"),
		)
		if err != nil {
			return fmt.Errorf("failed to create boot job: %w", err)
		}
	}

	d.scheduler.Start()
	d.started = true
	d.log.Info("Clock started",
		zap.Duration("tick_interval", d.cfg.TickInterval),
		zap.Duration("boot_delay", d.cfg.BootDelay))
	return nil
}

// Stop cancels all jobs. Safe to call more than once.
func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return nil
	}
	d.stopped = true

	if err := d.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	d.log.Info("Clock stopped")
	return nil
}

// bootAt avoids handing gocron a start time that is already in the past
func (d *Driver) bootAt() gocron.OneTimeJobStartAtOption {
	if d.cfg.BootDelay <= 0 {
		return gocron.OneTimeJobStartImmediately()
	}
	return gocron.OneTimeJobStartDateTime(time.Now().Add(d.cfg.BootDelay))
}

func (d *Driver) tick() {
	d.handle.Dispatch(system.Tick{At: time.Now().UnixMilli()})
}

func (d *Driver) boot() {
	if d.handle.State().Booted {
		return
	}
	d.log.Info("Booting")
	d.handle.Dispatch(system.Boot{})
}
