package execution

import (
	"context"
	"errors"
	"time"

	"github.com/tailored-agentic-units/statekit/dispatchers"
	"github.com/tailored-agentic-units/statekit/observability"
	"github.com/tailored-agentic-units/statekit/progress"
)

// CollectOptions configures CollectOnEach.
type CollectOptions struct {
	// Category the block runs on. The zero value is dispatchers.Default;
	// pass dispatchers.Main for blocks that touch the view.
	Category dispatchers.Category

	// Mutex, when set, is held around each block call.
	Mutex *Mutex

	// ShowProgress gates a progress indicator around each item.
	ShowProgress bool
	Progress     progress.Progress
	Delay        time.Duration
}

// CollectOnEach launches a task that calls block for every item
// received from source until source is closed or the task is cancelled.
//
// A failing block is offered to HandleException. A claimed failure
// skips the item; an unclaimed one stops the collection and fails the
// task.
func CollectOnEach[T any](c *Context, source <-chan T, opts CollectOptions, block func(ctx context.Context, item T) error) *Task {
	delay := c.delay(opts.Delay)

	return c.launchTask("collect_on_each", dispatchers.Unconfined, launchSpec{}, func(t *Task) Body {
		return func(ctx context.Context) error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case item, ok := <-source:
					if !ok {
						return nil
					}
					err := c.collectItem(ctx, t.id, opts, delay, func(ctx context.Context) error {
						return block(ctx, item)
					})
					if err != nil {
						return err
					}
				}
			}
		}
	})
}

func (c *Context) collectItem(ctx context.Context, taskID string, opts CollectOptions, delay time.Duration, fn Body) error {
	var gate *progressGate
	if opts.ShowProgress {
		gate = c.startProgress(taskID, opts.Progress, delay)
	}

	err := c.guarded(ctx, opts.Mutex, opts.Category, fn)

	if gate != nil {
		gate.stop(ctx)
	}

	if err == nil || ctx.Err() != nil || errors.Is(err, ErrCancelled) {
		return err
	}

	if c.handle(ctx, nil, err) {
		c.emit(ctx, EventTaskRecovered, observability.LevelInfo, "execution.CollectOnEach", map[string]any{
			"task_id": taskID,
			"error":   err,
		})
		return nil
	}
	return &unclaimedError{err: err}
}

func (c *Context) guarded(ctx context.Context, mutex *Mutex, category dispatchers.Category, fn Body) error {
	if mutex != nil {
		unlock, err := mutex.Lock(ctx)
		if err != nil {
			return err
		}
		defer unlock()
	}
	return c.execute(ctx, category, fn)
}
