// Package dispatchers defines the scheduling capability the execution
// layer runs work on, and the four named categories a host supplies.
//
// A Dispatcher accepts a function and runs it somewhere: on a single
// sequenced goroutine (the UI-affinity "main" category), on a bounded
// pool of goroutines (the "default" and "io" categories), or directly on
// the caller's goroutine ("unconfined").
//
//	set, err := dispatchers.New(dispatchers.DefaultConfig())
//	defer set.Close(ctx)
//	err = dispatchers.Run(ctx, set.Main, func() { render() })
package dispatchers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Dispatcher schedules functions for execution.
//
// Dispatch either accepts fn, in which case fn is guaranteed to run
// exactly once, or returns an error and fn never runs.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, fn func()) error
}

// Pumper is implemented by dispatchers that can run their queued
// functions on the caller's goroutine. A function running on such a
// dispatcher calls Pump instead of blocking on work posted to the same
// dispatcher, so that work still gets its turn.
type Pumper interface {
	Pump(ctx context.Context, until <-chan struct{}) error
}

// Closer is implemented by dispatchers owning goroutines.
type Closer interface {
	Close(ctx context.Context) error
}

// Category names one of the four scheduling categories.
type Category int

const (
	Default Category = iota
	Main
	Unconfined
	IO
)

func (c Category) String() string {
	switch c {
	case Default:
		return "default"
	case Main:
		return "main"
	case Unconfined:
		return "unconfined"
	case IO:
		return "io"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Set bundles the four dispatchers a host supplies to an execution
// context. It is fixed for the lifetime of the contexts using it.
type Set struct {
	Default    Dispatcher
	Main       Dispatcher
	Unconfined Dispatcher
	IO         Dispatcher
}

// Get returns the dispatcher for category c.
func (s Set) Get(c Category) (Dispatcher, error) {
	var d Dispatcher
	switch c {
	case Default:
		d = s.Default
	case Main:
		d = s.Main
	case Unconfined:
		d = s.Unconfined
	case IO:
		d = s.IO
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, c)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingDispatcher, c)
	}
	return d, nil
}

// Validate reports an error when any category has no dispatcher.
func (s Set) Validate() error {
	for _, c := range []Category{Default, Main, Unconfined, IO} {
		if _, err := s.Get(c); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every dispatcher in the set that owns goroutines. The
// dispatchers are closed concurrently; the first error is returned.
func (s Set) Close(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	seen := make(map[Dispatcher]bool, 4)
	for _, d := range []Dispatcher{s.Default, s.Main, s.Unconfined, s.IO} {
		if d == nil || seen[d] {
			continue
		}
		seen[d] = true
		if c, ok := d.(Closer); ok {
			g.Go(func() error {
				return c.Close(gctx)
			})
		}
	}
	return g.Wait()
}

// Run dispatches fn on d and waits until it has finished. If ctx ends
// first, Run returns ctx.Err() and fn may still run later.
func Run(ctx context.Context, d Dispatcher, fn func()) error {
	done := make(chan struct{})
	err := d.Dispatch(ctx, func() {
		defer close(done)
		fn()
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
