package channel

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("channel closed")

// Broadcast is a last-value cache with fan-out. Every subscriber gets
// the latest value on subscription and then every later value, in
// publish order.
type Broadcast[T any] struct {
	mu     sync.Mutex
	value  T
	has    bool
	subs   map[string]*Subscription[T]
	closed bool
}

func NewBroadcast[T any]() *Broadcast[T] {
	return &Broadcast[T]{subs: make(map[string]*Subscription[T])}
}

// Publish stores v as the latest value and queues it for every
// subscriber.
func (b *Broadcast[T]) Publish(v T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.value, b.has = v, true
	for _, sub := range b.subs {
		sub.push(v)
	}
	return nil
}

// Value returns the latest value, if any was published.
func (b *Broadcast[T]) Value() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value, b.has
}

// Subscribe returns a subscription primed with the latest value. On a
// closed Broadcast the subscription yields that value and then ErrClosed.
func (b *Broadcast[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscription[T](b.unsubscribe)
	if b.has {
		sub.push(b.value)
	}
	if b.closed {
		sub.end()
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Broadcast[T]) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

func (b *Broadcast[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Values already queued stay receivable.
func (b *Broadcast[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		sub.end()
		delete(b.subs, id)
	}
}
