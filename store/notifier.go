package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/statekit/observability"
)

// Notifier is told about every dispatched batch and decides whether the
// new state goes downstream.
type Notifier[S any] interface {
	Notify(prev, next S)
}

// NotifierFunc adapts a function to Notifier. It forwards every batch.
type NotifierFunc[S any] func(prev, next S)

func (f NotifierFunc[S]) Notify(prev, next S) { f(prev, next) }

// ChangeNotifier forwards a batch to send unless the new state is the
// same as the previous one. The first batch after construction is always
// forwarded, so downstream observers reliably get a value.
type ChangeNotifier[S any] struct {
	same     func(a, b S) bool
	send     func(S)
	notified atomic.Bool
	observer observability.Observer
}

// NewChangeNotifier uses == to detect unchanged states. With pointer
// states that is reference identity.
func NewChangeNotifier[S comparable](send func(S)) *ChangeNotifier[S] {
	return NewChangeNotifierFunc(func(a, b S) bool { return a == b }, send)
}

// NewChangeNotifierFunc uses same to detect unchanged states.
func NewChangeNotifierFunc[S any](same func(a, b S) bool, send func(S)) *ChangeNotifier[S] {
	return &ChangeNotifier[S]{
		same:     same,
		send:     send,
		observer: observability.NoOpObserver{},
	}
}

// WithObserver sets the observer receiving skip warnings and returns n.
func (n *ChangeNotifier[S]) WithObserver(observer observability.Observer) *ChangeNotifier[S] {
	if observer != nil {
		n.observer = observer
	}
	return n
}

func (n *ChangeNotifier[S]) Notify(prev, next S) {
	first := n.notified.CompareAndSwap(false, true)
	if first || !n.same(prev, next) {
		n.send(next)
		return
	}

	n.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventNotifySkip,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "store.ChangeNotifier",
		Data: map[string]any{
			"prev": fmt.Sprint(prev),
			"next": fmt.Sprint(next),
		},
	})
}
