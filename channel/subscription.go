// Package channel provides the two publication primitives the view-model
// layer is built on.
//
// Broadcast keeps the latest value and replays it to every new
// subscriber. OneShot keeps nothing: an emission waits until someone is
// subscribed and then reaches only the subscribers present at that
// moment.
//
// Both deliver through a Subscription with its own unbounded queue, so a
// slow subscriber never loses values and never slows the publisher.
package channel

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Subscription receives the values published after it was created.
type Subscription[T any] struct {
	id     string
	mu     sync.Mutex
	queue  []T
	signal chan struct{}
	closed bool
	detach func(id string)
}

func newSubscription[T any](detach func(id string)) *Subscription[T] {
	return &Subscription[T]{
		id:     uuid.Must(uuid.NewV7()).String(),
		signal: make(chan struct{}, 1),
		detach: detach,
	}
}

// ID is a unique identifier assigned at subscription.
func (s *Subscription[T]) ID() string { return s.id }

// push queues v. It reports false when the subscription is closed.
func (s *Subscription[T]) push(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.queue = append(s.queue, v)
	s.wake()
	return true
}

// wake must be called with s.mu held.
func (s *Subscription[T]) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Receive returns the next value, waiting for one if the queue is empty.
// Values queued before the source closed are still returned; after that
// Receive returns ErrClosed.
func (s *Subscription[T]) Receive(ctx context.Context) (T, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			v := s.queue[0]
			var zero T
			s.queue[0] = zero
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return v, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			var zero T
			return zero, ErrClosed
		}

		select {
		case <-s.signal:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// TryReceive returns the next queued value without waiting.
func (s *Subscription[T]) TryReceive() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		var zero T
		return zero, false
	}
	v := s.queue[0]
	s.queue = s.queue[1:]
	return v, true
}

// Close detaches the subscription from its source and drops anything
// still queued. Close is idempotent.
func (s *Subscription[T]) Close() {
	if s.detach != nil {
		s.detach(s.id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.queue = nil
	s.wake()
}

// end is called by the source when it closes. Queued values stay
// receivable.
func (s *Subscription[T]) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.wake()
}

func (s *Subscription[T]) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// QueueLength returns the number of values waiting to be received.
func (s *Subscription[T]) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
