package execution

import (
	"container/list"
	"context"
	"sync"
)

// Mutex serializes task bodies. Waiters are granted the lock strictly in
// the order they queued, and the lock passes directly from the releasing
// holder to the next waiter.
//
// A task launched with a Mutex queues at the moment of the launch call,
// so tasks launched one after another from the same goroutine run their
// bodies in launch order.
type Mutex struct {
	mu      sync.Mutex
	held    bool
	waiters list.List
}

type waiter struct {
	ready chan struct{}
	elem  *list.Element
}

func NewMutex() *Mutex {
	return &Mutex{}
}

// reserve queues a waiter without blocking. The waiter is already
// granted when the mutex was free and nobody was queued.
func (m *Mutex) reserve() *waiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := &waiter{ready: make(chan struct{})}
	if !m.held && m.waiters.Len() == 0 {
		m.held = true
		close(w.ready)
		return w
	}
	w.elem = m.waiters.PushBack(w)
	return w
}

// wait blocks until w holds the mutex or ctx ends. On ctx end the waiter
// leaves the queue, and a grant that raced with the cancellation is
// passed on to the next waiter.
func (m *Mutex) wait(ctx context.Context, w *waiter) error {
	if block(ctx, w.ready) == nil {
		return nil
	}

	m.mu.Lock()
	select {
	case <-w.ready:
		m.mu.Unlock()
		m.release()
	default:
		m.waiters.Remove(w.elem)
		m.mu.Unlock()
	}
	return ctx.Err()
}

func (m *Mutex) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	front := m.waiters.Front()
	if front == nil {
		m.held = false
		return
	}
	w := m.waiters.Remove(front).(*waiter)
	w.elem = nil
	close(w.ready)
}

// Lock waits for the mutex and returns the function that releases it.
// The release function is safe to call more than once.
func (m *Mutex) Lock(ctx context.Context) (func(), error) {
	w := m.reserve()
	if err := m.wait(ctx, w); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(m.release) }, nil
}

// TryLock takes the mutex only if it is free and nobody is queued.
func (m *Mutex) TryLock() (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held || m.waiters.Len() > 0 {
		return nil, false
	}
	m.held = true
	var once sync.Once
	return func() { once.Do(m.release) }, true
}

// WithLock runs fn while holding the mutex.
func (m *Mutex) WithLock(ctx context.Context, fn func() error) error {
	unlock, err := m.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// Locked reports whether the mutex is currently held.
func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// Waiting returns the number of queued waiters.
func (m *Mutex) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waiters.Len()
}
