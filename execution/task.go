package execution

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/statekit/dispatchers"
)

// Body is the unit of work run by a launched task. It must return
// promptly once ctx is cancelled.
type Body func(ctx context.Context) error

// Status is the lifecycle position of a task.
type Status int32

const (
	StatusPending Status = iota
	StatusActive
	StatusCompleted
	StatusRecovered
	StatusFailed
	StatusCancelled
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusRecovered:
		return "recovered"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	case StatusRejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Terminal reports whether s is a final status.
func (s Status) Terminal() bool {
	return s >= StatusCompleted
}

// Task is the handle of one launched unit of work.
type Task struct {
	id       string
	name     string
	category dispatchers.Category
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	status   atomic.Int32
	err      error
}

func newTask(name string, category dispatchers.Category) *Task {
	return &Task{
		id:       uuid.Must(uuid.NewV7()).String(),
		name:     name,
		category: category,
		done:     make(chan struct{}),
	}
}

// ID is a unique identifier assigned at launch.
func (t *Task) ID() string { return t.id }

// Name is the launch helper that created the task ("launch_ui", ...).
func (t *Task) Name() string { return t.name }

// Category is the dispatcher category the body runs on.
func (t *Task) Category() dispatchers.Category { return t.category }

// Status is the current lifecycle position of the task.
func (t *Task) Status() Status { return Status(t.status.Load()) }

// Cancel requests cancellation. A task still waiting for its mutex
// leaves the queue; a running body observes it through its context.
func (t *Task) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Done is closed once the task reaches a terminal status.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the terminal error, or nil while the task is running.
//
//   - Completed, Recovered: nil
//   - Failed: *UnhandledError
//   - Cancelled: ErrCancelled
//   - Rejected: ErrDestroyed
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task is terminal and returns its error. Called
// with the context of a main body, it runs queued main work meanwhile.
func (t *Task) Wait(ctx context.Context) error {
	if err := block(ctx, t.done); err != nil {
		return err
	}
	return t.err
}

// settle publishes the terminal status. It is called exactly once.
func (t *Task) settle(s Status, err error) {
	t.err = err
	t.status.Store(int32(s))
	close(t.done)
}
