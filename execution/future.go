package execution

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/statekit/dispatchers"
	"github.com/tailored-agentic-units/statekit/observability"
	"golang.org/x/sync/errgroup"
)

// Future is the deferred result of Async. Failures of the body are
// returned to whoever awaits the future; they never reach the
// context's hooks.
type Future[T any] struct {
	id       string
	category dispatchers.Category
	cancel   context.CancelFunc
	done     chan struct{}
	value    T
	err      error
}

// ID is a unique identifier assigned at creation.
func (f *Future[T]) ID() string { return f.id }

// Category is the dispatcher category the body runs on.
func (f *Future[T]) Category() dispatchers.Category { return f.category }

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Cancel requests cancellation of the body.
func (f *Future[T]) Cancel() {
	if f.cancel != nil {
		f.cancel()
	}
}

// Await blocks until the result is available or ctx ends. A cancelled
// body yields ErrCancelled; a future created on a destroyed context
// yields ErrDestroyed. Called with the context of a main body, it runs
// queued main work meanwhile, so awaiting an AsyncUI future from main
// is safe.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	if err := block(ctx, f.done); err != nil {
		var zero T
		return zero, err
	}
	return f.value, f.err
}

// Async runs body on the category's dispatcher and returns its future.
func Async[T any](c *Context, category dispatchers.Category, body func(ctx context.Context) (T, error)) *Future[T] {
	return async(c, "async", category, body)
}

// AsyncIO runs body on the io dispatcher.
func AsyncIO[T any](c *Context, body func(ctx context.Context) (T, error)) *Future[T] {
	return async(c, "async_io", dispatchers.IO, body)
}

// AsyncUI runs body on the main dispatcher.
func AsyncUI[T any](c *Context, body func(ctx context.Context) (T, error)) *Future[T] {
	return async(c, "async_ui", dispatchers.Main, body)
}

func async[T any](c *Context, name string, category dispatchers.Category, body func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{
		id:       uuid.Must(uuid.NewV7()).String(),
		category: category,
		done:     make(chan struct{}),
	}

	ctx, cancel, err := c.register(f.id, f.done)
	if err != nil {
		f.err = c.reject(name, category, err)
		close(f.done)
		return f
	}
	f.cancel = cancel

	c.metrics.RecordLaunch()
	c.emit(ctx, EventTaskLaunch, observability.LevelVerbose, "execution.Async", map[string]any{
		"task_id":  f.id,
		"name":     name,
		"category": category.String(),
	})

	go func() {
		started := time.Now()
		spanCtx, span := c.telemetry.start(ctx, c.cfg.Name, f.id, name, category, launchSpec{})

		var value T
		err := c.execute(spanCtx, category, func(ctx context.Context) error {
			var err error
			value, err = body(ctx)
			return err
		})

		status := StatusCompleted
		data := map[string]any{
			"task_id":  f.id,
			"name":     name,
			"category": category.String(),
		}

		switch {
		case err == nil:
			c.emit(spanCtx, EventTaskComplete, observability.LevelVerbose, "execution.Async", data)
		case ctx.Err() != nil || errors.Is(err, ErrCancelled):
			status = StatusCancelled
			err = ErrCancelled
			c.emit(spanCtx, EventTaskCancel, observability.LevelVerbose, "execution.Async", data)
		default:
			status = StatusFailed
			data["error"] = err
			c.emit(spanCtx, EventAsyncFail, observability.LevelError, "execution.Async", data)
		}

		c.telemetry.finish(context.WithoutCancel(spanCtx), span, category, status, err, started)
		c.metrics.RecordOutcome(status)
		c.untrack(f.id)
		cancel()

		f.value, f.err = value, err
		close(f.done)
	}()

	return f
}

// AwaitAll waits for every future and returns their values in order.
// The first failure cancels the remaining futures and is returned.
func AwaitAll[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	// Only the calling goroutine may run main work.
	g, gctx := errgroup.WithContext(withoutMain(ctx))
	values := make([]T, len(futures))

	for i, f := range futures {
		g.Go(func() error {
			v, err := f.Await(gctx)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}

	done := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = g.Wait()
		close(done)
	}()

	err := block(ctx, done)
	if err == nil {
		err = waitErr
	}
	if err != nil {
		for _, f := range futures {
			f.Cancel()
		}
		return nil, err
	}
	return values, nil
}
