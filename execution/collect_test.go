package execution_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tailored-agentic-units/statekit/dispatchers"
	"github.com/tailored-agentic-units/statekit/execution"
)

func feed[T any](items ...T) <-chan T {
	ch := make(chan T, len(items))
	for _, item := range items {
		ch <- item
	}
	close(ch)
	return ch
}

func TestCollectOnEach_ProcessesInOrder(t *testing.T) {
	ec, main := newTestContext(t, execution.Hooks{})

	var mu sync.Mutex
	var got []string
	var offMain atomic.Int32

	task := execution.CollectOnEach(ec, feed("a", "b", "c"), execution.CollectOptions{
		Category: dispatchers.Main,
		Mutex:    execution.NewMutex(),
	}, func(ctx context.Context, item string) error {
		if !main.onMain() {
			offMain.Add(1)
		}
		mu.Lock()
		got = append(got, item)
		mu.Unlock()
		return nil
	})

	if err := waitTask(t, task); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("items = %v, want [a b c]", got)
	}
	if offMain.Load() != 0 {
		t.Errorf("%d items ran off the main dispatcher", offMain.Load())
	}
}

func TestCollectOnEach_ClaimedFailureContinues(t *testing.T) {
	var handled atomic.Int32
	ec, _ := newTestContext(t, execution.Hooks{
		HandleException: func(error) bool {
			handled.Add(1)
			return true
		},
	})

	var seen atomic.Int32
	task := execution.CollectOnEach(ec, feed(1, 2, 3), execution.CollectOptions{}, func(ctx context.Context, item int) error {
		seen.Add(1)
		if item == 2 {
			return errors.New("bad item")
		}
		return nil
	})

	if err := waitTask(t, task); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if seen.Load() != 3 {
		t.Errorf("seen = %d, want 3", seen.Load())
	}
	if handled.Load() != 1 {
		t.Errorf("HandleException calls = %d, want 1", handled.Load())
	}
	if task.Status() != execution.StatusCompleted {
		t.Errorf("Status() = %s, want completed", task.Status())
	}
}

func TestCollectOnEach_UnclaimedFailureStops(t *testing.T) {
	var handled atomic.Int32
	ec, _ := newTestContext(t, execution.Hooks{
		HandleException: func(error) bool {
			handled.Add(1)
			return false
		},
	})

	bad := errors.New("bad item")
	var seen atomic.Int32
	task := execution.CollectOnEach(ec, feed(1, 2, 3), execution.CollectOptions{}, func(ctx context.Context, item int) error {
		seen.Add(1)
		if item == 2 {
			return bad
		}
		return nil
	})

	err := waitTask(t, task)
	var unhandled *execution.UnhandledError
	if !errors.As(err, &unhandled) || !errors.Is(err, bad) {
		t.Errorf("Wait() error = %v, want *UnhandledError wrapping bad item", err)
	}
	if seen.Load() != 2 {
		t.Errorf("seen = %d, want 2", seen.Load())
	}
	if handled.Load() != 1 {
		t.Errorf("HandleException calls = %d, want exactly 1", handled.Load())
	}
}

func TestCollectOnEach_CancelledByDestroy(t *testing.T) {
	ec, _ := newTestContext(t, execution.Hooks{})

	source := make(chan int)
	task := execution.CollectOnEach(ec, source, execution.CollectOptions{}, func(ctx context.Context, item int) error {
		return nil
	})
	source <- 1

	ec.Destroy()
	if err := waitTask(t, task); !errors.Is(err, execution.ErrCancelled) {
		t.Errorf("Wait() error = %v, want ErrCancelled", err)
	}
}
