package channel

import (
	"context"
	"sync"
)

// OneShot delivers each emission to the subscribers present when it is
// emitted. Nothing is replayed. An emission made while nobody is
// subscribed waits for the first subscriber instead of being dropped.
type OneShot[T any] struct {
	mu      sync.Mutex
	subs    map[string]*Subscription[T]
	present chan struct{}
	done    chan struct{}
	closed  bool
}

func NewOneShot[T any]() *OneShot[T] {
	return &OneShot[T]{
		subs:    make(map[string]*Subscription[T]),
		present: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Emit waits until at least one subscriber is present, then queues v
// once for each current subscriber. It returns ctx.Err() if ctx ends
// first and ErrClosed if the OneShot is closed.
func (o *OneShot[T]) Emit(ctx context.Context, v T) error {
	for {
		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			return ErrClosed
		}
		if len(o.subs) > 0 {
			for _, sub := range o.subs {
				sub.push(v)
			}
			o.mu.Unlock()
			return nil
		}
		present := o.present
		o.mu.Unlock()

		select {
		case <-present:
		case <-o.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribe registers a subscriber for future emissions and releases any
// Emit waiting for one.
func (o *OneShot[T]) Subscribe() *Subscription[T] {
	o.mu.Lock()
	defer o.mu.Unlock()

	sub := newSubscription[T](o.unsubscribe)
	if o.closed {
		sub.end()
		return sub
	}
	o.subs[sub.id] = sub
	if len(o.subs) == 1 {
		close(o.present)
	}
	return sub
}

func (o *OneShot[T]) unsubscribe(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.subs[id]; !ok {
		return
	}
	delete(o.subs, id)
	if len(o.subs) == 0 && !o.closed {
		o.present = make(chan struct{})
	}
}

func (o *OneShot[T]) SubscriberCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// Close ends every subscription and fails pending and later emissions
// with ErrClosed.
func (o *OneShot[T]) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	close(o.done)
	for id, sub := range o.subs {
		sub.end()
		delete(o.subs, id)
	}
}
