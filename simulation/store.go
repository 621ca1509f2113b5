package simulation

import (
	"log/slog"
	"sync"

	"github.com/zero-day-ai/redsim/simerr"
)

// Listener observes state changes. It receives a snapshot of the new state
// and the action that produced it. The action is nil after Reset.
// Listeners run synchronously inside Dispatch and must not call Dispatch or
// Reset themselves.
type Listener func(state State, action Action)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used to trace dispatched actions.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store owns the simulation state. All mutation goes through Dispatch.
//
// A Store must be created with NewStore and passed explicitly to every
// component that reads or changes state. Calling any method on a nil *Store
// panics: it means a consumer was wired without its store.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[uint64]Listener
	nextID    uint64

	// notifyMu serializes listener delivery so observers see changes in order.
	notifyMu sync.Mutex

	logger *slog.Logger
}

// NewStore creates a store holding initial.
func NewStore(initial State, opts ...StoreOption) *Store {
	s := &Store{
		state:     initial.Clone(),
		listeners: make(map[uint64]Listener),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) mustOwn(op string) {
	if s == nil {
		panic(simerr.NewInternalError(op, simerr.ErrNoStore))
	}
}

// Dispatch applies action through Reduce, stores the result and notifies
// subscribers. It returns a snapshot of the new state.
func (s *Store) Dispatch(action Action) State {
	s.mustOwn("Store.Dispatch")

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, action)
	snapshot := s.state.Clone()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if action != nil {
		s.logger.Debug("action dispatched",
			"action", action.Type(),
			"phase", snapshot.CurrentPhase,
			"steps", len(snapshot.AttackSteps),
			"running", snapshot.IsRunning,
		)
	}

	for _, l := range listeners {
		l(snapshot, action)
	}
	return snapshot
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mustOwn("Store.Snapshot")

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// IsRunning reports the running flag without copying the whole state.
func (s *Store) IsRunning() bool {
	s.mustOwn("Store.IsRunning")

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsRunning
}

// Subscribe registers fn to be called after every state change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Listener) func() {
	s.mustOwn("Store.Subscribe")

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Reset discards the whole state and replaces it with initial.
// Subscribers are notified with a nil action.
func (s *Store) Reset(initial State) {
	s.mustOwn("Store.Reset")

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.state = initial.Clone()
	snapshot := s.state.Clone()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.logger.Debug("simulation state reset", "targets", len(snapshot.Targets))

	for _, l := range listeners {
		l(snapshot, nil)
	}
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := uint64(0); id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}
