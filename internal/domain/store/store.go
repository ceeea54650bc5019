// Package store holds the canonical device state and serializes every
// change through system.Transition.
package store

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhoneOS/internal/shared/id"
)

// Listener receives each new state. Listeners run synchronously inside
// Dispatch, in dispatch order, and must not call Dispatch.
type Listener func(*system.State)

// Handle is what collaborators get: read, dispatch, subscribe
type Handle interface {
	State() *system.State
	Dispatch(action system.Action)
	Subscribe(listener Listener) (unsubscribe func())
}

// Options configures a Store
type Options struct {
	// Now stamps OpenApp and Tick actions that arrive without a time
	Now func() time.Time
	// InstanceID stamps OpenApp actions that arrive without an id
	InstanceID func(app system.AppID) string
	Logger     *logging.Logger
	Metrics    *monitoring.Metrics
}

type subscription struct {
	id       uint64
	listener Listener
}

// Store is the single owner of the device state
type Store struct {
	now        func() time.Time
	instanceID func(system.AppID) string
	log        *logging.Logger
	metrics    *monitoring.Metrics

	// mu serializes transitions and their notifications
	mu    sync.Mutex
	state atomic.Pointer[system.State]

	subMu  sync.Mutex
	subs   []subscription
	nextID uint64
}

var _ Handle = (*Store)(nil)

// New creates a store holding initial
func New(initial *system.State, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.InstanceID == nil {
		opts.InstanceID = func(app system.AppID) string { return id.Instance(string(app)) }
	}

	s := &Store{
		now:        opts.Now,
		instanceID: opts.InstanceID,
		log:        logging.Or(opts.Logger).Component("store"),
		metrics:    opts.Metrics,
	}
	s.state.Store(initial)
	return s
}

// State returns the current snapshot. Callers must not modify it.
func (s *Store) State() *system.State {
	return s.state.Load()
}

// Dispatch stamps the action, applies it, and notifies listeners when the
// state changed. A nil action is ignored.
func (s *Store) Dispatch(action system.Action) {
	if action == nil {
		return
	}
	action = s.stamp(action)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.Load()
	start := time.Now()
	next := system.Transition(prev, action)
	elapsed := time.Since(start)

	changed := next != prev
	s.metrics.RecordAction(string(action.Kind()), changed, elapsed)

	if !changed {
		s.log.Debug("Action ignored", zap.String("action", string(action.Kind())))
		return
	}
	s.state.Store(next)

	if action.Kind() != system.KindTick {
		s.log.Debug("Action applied", zap.String("action", string(action.Kind())))
	}

	for _, sub := range s.subscribers() {
		sub.listener(next)
	}
}

// Subscribe registers listener. The returned func removes it and may be
// called more than once.
func (s *Store) Subscribe(listener Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	subID := s.nextID
	s.subs = append(s.subs, subscription{id: subID, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(subID) })
	}
}

func (s *Store) unsubscribe(subID uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for i, sub := range s.subs {
		if sub.id == subID {
			next := make([]subscription, 0, len(s.subs)-1)
			next = append(next, s.subs[:i]...)
			s.subs = append(next, s.subs[i+1:]...)
			return
		}
	}
}

func (s *Store) subscribers() []subscription {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	return s.subs
}

// stamp fills the nondeterministic inputs the transition function expects
// on the action
func (s *Store) stamp(action system.Action) system.Action {
	switch a := action.(type) {
	case system.OpenApp:
		if a.InstanceID == "" {
			a.InstanceID = s.instanceID(a.ID)
		}
		if a.At == 0 {
			a.At = s.now().UnixMilli()
		}
		return a
	case system.Tick:
		if a.At == 0 {
			a.At = s.now().UnixMilli()
		}
		return a
	}
	return action
}
