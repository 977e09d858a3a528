// Package store holds a single immutable state value and moves it
// forward with a pure reducer.
//
// A Store applies batches of actions as a left fold and reports each
// batch to its Notifier once, with the state before the first action and
// after the last. Side effects go through the Effector, which sees the
// current state but can not replace it.
//
//	s := store.New(Counter{}, store.NewChangeNotifier(render), reduce, effect)
//	s.Dispatch(Increment{}, Increment{}, Increment{}) // render called once
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/statekit/observability"
)

// Reducer computes the next state. It must be pure and must not return
// a state that aliases mutable parts of its input. Unsupported
// state/action combinations are programming errors: panic with
// IllegalAction.
type Reducer[S, A any] func(state S, action A) S

// Effector performs a side effect for the current state. It may call
// back into the store, for example to dispatch follow-up actions.
type Effector[S, E any] func(state S, effect E)

// Option configures a Store.
type Option func(*options)

type options struct {
	name     string
	observer observability.Observer
}

// WithName labels the store in events.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithObserver sets the observer for store events. The default is
// NoOpObserver.
func WithObserver(observer observability.Observer) Option {
	return func(o *options) { o.observer = observer }
}

// Store is a single-writer state container. Dispatch calls are
// serialized, including their notification; State may be read from any
// goroutine without blocking.
type Store[S, A, E any] struct {
	id       string
	name     string
	observer observability.Observer

	notifier Notifier[S]
	reducer  Reducer[S, A]
	effector Effector[S, E]

	mu    sync.Mutex
	state atomic.Pointer[S]
}

// New creates a Store holding initial. A nil notifier discards
// notifications; a nil effector rejects every side effect.
func New[S, A, E any](initial S, notifier Notifier[S], reducer Reducer[S, A], effector Effector[S, E], opts ...Option) *Store[S, A, E] {
	if reducer == nil {
		panic("store: nil reducer")
	}

	o := options{name: "store", observer: observability.NoOpObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = observability.NoOpObserver{}
	}
	if notifier == nil {
		notifier = NotifierFunc[S](func(S, S) {})
	}

	s := &Store[S, A, E]{
		id:       uuid.Must(uuid.NewV7()).String(),
		name:     o.name,
		observer: o.observer,
		notifier: notifier,
		reducer:  reducer,
		effector: effector,
	}
	s.state.Store(&initial)
	return s
}

// ID is a unique identifier assigned at construction.
func (s *Store[S, A, E]) ID() string { return s.id }

// State returns the current state.
func (s *Store[S, A, E]) State() S {
	return *s.state.Load()
}

// Dispatch folds actions into the current state and returns the result.
//
// The notifier is called exactly once per non-empty batch with the
// states before and after the batch; intermediate states are never
// published. An empty batch returns the current state without notifying.
// A panicking reducer leaves the held state untouched and the panic
// propagates to the caller.
//
// The notifier runs while the store is locked and must not call
// Dispatch on the same store.
func (s *Store[S, A, E]) Dispatch(actions ...A) S {
	if len(actions) == 0 {
		return s.State()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := *s.state.Load()
	next := prev
	for _, action := range actions {
		next = s.reducer(next, action)
	}
	s.state.Store(&next)

	s.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventDispatch,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "store.Dispatch",
		Data: map[string]any{
			"store":   s.name,
			"actions": len(actions),
		},
	})

	s.notifier.Notify(prev, next)
	return next
}

// DispatchSideEffect hands effect to the effector together with the
// current state. The held state is not changed.
func (s *Store[S, A, E]) DispatchSideEffect(effect E) {
	state := s.State()
	if s.effector == nil {
		panic(IllegalEffect(state, effect))
	}

	s.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventEffect,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "store.DispatchSideEffect",
		Data:      map[string]any{"store": s.name},
	})

	s.effector(state, effect)
}
