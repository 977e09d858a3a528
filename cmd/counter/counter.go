package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/statekit/execution"
	"github.com/tailored-agentic-units/statekit/progress"
	"github.com/tailored-agentic-units/statekit/store"
	"github.com/tailored-agentic-units/statekit/viewmodel"
)

var errUnreachable = errors.New("counter service unreachable")

type counter struct {
	count  int
	synced int
}

func (c *counter) String() string {
	return fmt.Sprintf("count=%d synced=%d", c.count, c.synced)
}

type actionKind int

const (
	actIncrement actionKind = iota
	actDecrement
	actSynced
)

type action struct {
	kind  actionKind
	value int
}

func (a action) String() string {
	switch a.kind {
	case actIncrement:
		return "increment"
	case actDecrement:
		return "decrement"
	case actSynced:
		return fmt.Sprintf("synced(%d)", a.value)
	default:
		return fmt.Sprintf("action(%d)", int(a.kind))
	}
}

type effect string

const (
	effectSync   effect = "sync"
	effectFinish effect = "finish"
)

func reduce(state *counter, a action) *counter {
	switch a.kind {
	case actIncrement:
		return &counter{count: state.count + 1, synced: state.synced}
	case actDecrement:
		if state.count == 0 {
			return state
		}
		return &counter{count: state.count - 1, synced: state.synced}
	case actSynced:
		return &counter{count: state.count, synced: a.value}
	default:
		panic(store.IllegalAction(state, a))
	}
}

type counterVM = viewmodel.ViewModel[*counter, action, effect, string]

// app carries the view model into its own effector and exception
// handler.
type app struct {
	vm      *counterVM
	latency time.Duration
	fail    bool

	// last sync launched by sideEffect
	sync *execution.Task
}

// sideEffect runs side effects. sync simulates a remote call that stores the
// current count; finish tells the view to leave.
func (a *app) sideEffect(state *counter, e effect) {
	switch e {
	case effectSync:
		value := state.count
		a.sync = a.vm.LaunchNetProgress(execution.ProgressOptions{
			Progress: progress.Global(),
		}, func(ctx context.Context) error {
			select {
			case <-time.After(a.latency):
			case <-ctx.Done():
				return ctx.Err()
			}
			if a.fail {
				return errUnreachable
			}
			a.vm.Fire(action{kind: actSynced, value: value})
			return nil
		})
	case effectFinish:
		a.vm.PostOneTimeAction("finished")
	default:
		panic(store.IllegalEffect(state, e))
	}
}

func (a *app) handle(err error) bool {
	if errors.Is(err, errUnreachable) {
		a.vm.ShowError(viewmodel.ErrorNetwork)
		return true
	}
	return false
}
