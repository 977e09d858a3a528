package dispatchers

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tailored-agentic-units/statekit/observability"
)

// Sequenced runs dispatched functions one at a time, in dispatch order,
// on a single goroutine it owns. It backs the main category: code that
// must never run concurrently with itself (UI updates, hook calls) is
// posted here.
//
// A function running on a Sequenced dispatcher that waits for other
// work posted to it must wait through Pump. Pump is only valid on the
// goroutine of the function currently running.
type Sequenced struct {
	name     string
	queue    chan func()
	stop     chan struct{}
	done     chan struct{}
	mu       sync.RWMutex
	closed   bool
	observer observability.Observer
}

// NewSequenced starts a sequenced dispatcher with a queue of queueSize
// pending functions. Dispatch blocks while the queue is full.
func NewSequenced(name string, queueSize int, observer observability.Observer) *Sequenced {
	if queueSize <= 0 {
		queueSize = 1
	}
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	s := &Sequenced{
		name:     name,
		queue:    make(chan func(), queueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		observer: observer,
	}

	observer.OnEvent(context.Background(), observability.Event{
		Type:      EventDispatcherStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "dispatchers.Sequenced",
		Data: map[string]any{
			"name":       name,
			"queue_size": queueSize,
		},
	})

	go s.loop()
	return s
}

func (s *Sequenced) Name() string { return s.name }

func (s *Sequenced) Dispatch(ctx context.Context, fn func()) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("%w: %s", ErrClosed, s.name)
	}

	select {
	case s.queue <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pump runs queued functions on the calling goroutine until until is
// closed or ctx ends. It is called by a function already running on s,
// which stays suspended while the nested functions run one at a time in
// dispatch order.
func (s *Sequenced) Pump(ctx context.Context, until <-chan struct{}) error {
	for {
		select {
		case <-until:
			return nil
		default:
		}

		select {
		case <-until:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.queue:
			s.run(fn)
		}
	}
}

// Close stops accepting work, runs everything already queued, and waits
// for the loop goroutine to exit or ctx to end.
func (s *Sequenced) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.stop)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher %s close: %w", s.name, ctx.Err())
	}
}

func (s *Sequenced) loop() {
	defer func() {
		s.observer.OnEvent(context.Background(), observability.Event{
			Type:      EventDispatcherStop,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "dispatchers.Sequenced",
			Data:      map[string]any{"name": s.name},
		})
		close(s.done)
	}()

	for {
		select {
		case fn := <-s.queue:
			s.run(fn)
		case <-s.stop:
			for {
				select {
				case fn := <-s.queue:
					s.run(fn)
				default:
					return
				}
			}
		}
	}
}

// run keeps the loop alive when fn panics.
func (s *Sequenced) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.observer.OnEvent(context.Background(), observability.Event{
				Type:      EventDispatcherPanic,
				Level:     observability.LevelError,
				Timestamp: time.Now(),
				Source:    "dispatchers.Sequenced",
				Data: map[string]any{
					"name":  s.name,
					"panic": fmt.Sprint(r),
					"stack": string(debug.Stack()),
				},
			})
		}
	}()
	fn()
}
