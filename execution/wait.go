package execution

import (
	"context"

	"github.com/tailored-agentic-units/statekit/dispatchers"
)

type mainKey struct{}

// withMain marks ctx as belonging to a body running on the main
// dispatcher d.
func withMain(ctx context.Context, d dispatchers.Dispatcher) context.Context {
	return context.WithValue(ctx, mainKey{}, d)
}

// withoutMain drops the main mark, for contexts handed to goroutines
// that do not run on main.
func withoutMain(ctx context.Context) context.Context {
	if _, ok := mainOf(ctx); !ok {
		return ctx
	}
	return context.WithValue(ctx, mainKey{}, nil)
}

func mainOf(ctx context.Context) (dispatchers.Dispatcher, bool) {
	d, ok := ctx.Value(mainKey{}).(dispatchers.Dispatcher)
	return d, ok && d != nil
}

// OnMain reports whether ctx is the context of a body running on the
// main dispatcher.
func OnMain(ctx context.Context) bool {
	_, ok := mainOf(ctx)
	return ok
}

// block waits for done or the end of ctx. From a body on main it keeps
// running queued main work while it waits, so waiting on a task or
// future that itself needs main can not deadlock.
func block(ctx context.Context, done <-chan struct{}) error {
	if d, ok := mainOf(ctx); ok {
		if p, ok := d.(dispatchers.Pumper); ok {
			return p.Pump(ctx, done)
		}
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
