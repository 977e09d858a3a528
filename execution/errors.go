package execution

import (
	"errors"
	"fmt"
)

// Sentinel errors for the execution layer.
var (
	ErrDestroyed = errors.New("execution context destroyed")
	ErrCancelled = errors.New("task cancelled")
)

// UnhandledError is the terminal error of a task whose failure was
// claimed by neither the task's OnError hook nor the context's
// HandleException hook.
type UnhandledError struct {
	TaskID string
	Err    error
}

func (e *UnhandledError) Error() string {
	return fmt.Sprintf("task %s: unhandled failure: %v", e.TaskID, e.Err)
}

func (e *UnhandledError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking task body.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// unclaimedError marks a failure that already went through the hook
// chain without being claimed, so the supervisor must not route it again.
type unclaimedError struct {
	err error
}

func (e *unclaimedError) Error() string { return e.err.Error() }

func (e *unclaimedError) Unwrap() error { return e.err }
