package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/resilience"
)

// WriterOptions configures a Writer
type WriterOptions struct {
	// SaveTimeout bounds a single save; defaults to 5s
	SaveTimeout time.Duration
	Breaker     resilience.Settings
	Logger      *logging.Logger
	Metrics     *monitoring.Metrics
}

// Writer saves snapshots off the dispatch path. Only the newest pending
// snapshot is kept; intermediate states are skipped.
type Writer struct {
	manager *Manager
	breaker *resilience.Breaker
	timeout time.Duration
	log     *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.Mutex
	closed  bool
	mailbox chan *system.State
	done    chan struct{}
}

// NewWriter starts the background saver
func NewWriter(manager *Manager, opts WriterOptions) *Writer {
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 5 * time.Second
	}

	w := &Writer{
		manager: manager,
		timeout: opts.SaveTimeout,
		log:     logging.Or(opts.Logger).Component("session.writer"),
		metrics: opts.Metrics,
		mailbox: make(chan *system.State, 1),
		done:    make(chan struct{}),
	}

	settings := opts.Breaker
	observe := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to resilience.State) {
		w.log.Warn("Snapshot breaker state changed",
			zap.String("breaker", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
		w.metrics.SetBreakerState(int(to))
		if observe != nil {
			observe(name, from, to)
		}
	}
	w.breaker = resilience.New("snapshot", settings)

	go w.run()
	return w
}

// Submit queues s for saving, replacing any snapshot still waiting. It
// never blocks, so it is safe to use as a store listener.
func (w *Writer) Submit(s *system.State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	select {
	case <-w.mailbox:
	default:
	}
	w.mailbox <- s
}

// Flush saves s immediately on the caller's goroutine
func (w *Writer) Flush(ctx context.Context, s *system.State) error {
	return w.breaker.Do(func() error {
		return w.manager.save(ctx, s)
	})
}

// Close saves the last pending snapshot and stops the saver
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.mailbox)
	w.mu.Unlock()

	<-w.done
}

// Breaker exposes the breaker state for health reporting
func (w *Writer) Breaker() *resilience.Breaker {
	return w.breaker
}

func (w *Writer) run() {
	defer close(w.done)

	for s := range w.mailbox {
		w.persist(s)
	}
}

func (w *Writer) persist(s *system.State) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	err := w.Flush(ctx, s)
	switch {
	case err == nil:
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		w.metrics.RecordSnapshot("save", "skipped", 0)
		w.log.Debug("Snapshot save skipped", zap.Error(err))
	default:
		w.log.Warn("Failed to save state", zap.String("key", w.manager.Key()), zap.Error(err))
	}
}
