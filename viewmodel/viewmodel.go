// Package viewmodel publishes a store's state to a view.
//
// A ViewModel owns a store.Store and an execution.Context and exposes
// three channels. States replays the latest ViewState to every new
// subscriber. Progress replays only the latest show/hide signal.
// OneTimeActions delivers navigation-style events once, to whoever is
// subscribed when they are posted, and holds each event until somebody
// is.
//
//	vm, err := viewmodel.New[*Counter, Action, Effect, Nav](set, handler, viewmodel.Definition[*Counter, Action, Effect]{
//		Initial:  &Counter{},
//		Reducer:  reduce,
//		Effector: effect,
//	})
//	states := vm.States().Subscribe()
//	vm.Fire(Increment{})
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/tailored-agentic-units/statekit/channel"
	"github.com/tailored-agentic-units/statekit/dispatchers"
	"github.com/tailored-agentic-units/statekit/execution"
	"github.com/tailored-agentic-units/statekit/observability"
	"github.com/tailored-agentic-units/statekit/progress"
	"github.com/tailored-agentic-units/statekit/store"
)

// Definition describes the store a ViewModel runs.
type Definition[S, A, E any] struct {
	Initial  S
	Reducer  store.Reducer[S, A]
	Effector store.Effector[S, E]

	// Same reports whether two states are the same for publishing
	// purposes. Nil uses == and requires a comparable state type; states
	// whose dynamic values can not be compared are never the same.
	Same func(a, b S) bool
}

// ViewModel wires a Store to its observable channels. The embedded
// execution.Context provides the launch helpers; its exception and
// progress hooks are bound to the ViewModel.
type ViewModel[S, A, E, O any] struct {
	*execution.Context

	handler  ExceptionHandler
	store    *store.Store[S, A, E]
	states   *channel.Broadcast[ViewState[S]]
	progress *channel.Broadcast[progress.Signal]
	oneTime  *channel.OneShot[O]

	// orders one-time actions by post time
	posting *execution.Mutex

	closeOnce sync.Once
	closeErr  error
}

// New builds a ViewModel and publishes def.Initial as the first state.
// A nil handler claims no failures.
func New[S, A, E, O any](set dispatchers.Set, handler ExceptionHandler, def Definition[S, A, E], opts ...execution.Option) (*ViewModel[S, A, E, O], error) {
	if def.Reducer == nil {
		return nil, errors.New("definition has no reducer")
	}

	same := def.Same
	if same == nil {
		if !reflect.TypeFor[S]().Comparable() {
			return nil, fmt.Errorf("state type %s is not comparable and no Same func was given", reflect.TypeFor[S]())
		}
		same = identical[S]
	}

	vm := &ViewModel[S, A, E, O]{
		handler:  handler,
		states:   channel.NewBroadcast[ViewState[S]](),
		progress: channel.NewBroadcast[progress.Signal](),
		oneTime:  channel.NewOneShot[O](),
		posting:  execution.NewMutex(),
	}

	ec, err := execution.New(set, execution.Hooks{
		HandleException: vm.HandleException,
		ShowProgress:    vm.showProgress,
	}, opts...)
	if err != nil {
		return nil, err
	}
	vm.Context = ec

	notifier := store.NewChangeNotifierFunc(same, func(next S) {
		vm.ShowContent(next)
	}).WithObserver(ec.Observer())

	vm.store = store.New[S, A, E](def.Initial, notifier, def.Reducer, def.Effector,
		store.WithName(ec.Name()),
		store.WithObserver(ec.Observer()),
	)

	// The first notification is always forwarded, which publishes the
	// initial state.
	notifier.Notify(def.Initial, def.Initial)

	return vm, nil
}

// States is the replaying channel of view states.
func (vm *ViewModel[S, A, E, O]) States() *channel.Broadcast[ViewState[S]] { return vm.states }

// Progress is the channel of progress signals. It replays the latest.
func (vm *ViewModel[S, A, E, O]) Progress() *channel.Broadcast[progress.Signal] { return vm.progress }

// OneTimeActions is the non-replaying channel of one-time actions.
func (vm *ViewModel[S, A, E, O]) OneTimeActions() *channel.OneShot[O] { return vm.oneTime }

// State returns the store's current state.
func (vm *ViewModel[S, A, E, O]) State() S { return vm.store.State() }

// Fire dispatches actions to the store as one batch and returns the
// resulting state.
func (vm *ViewModel[S, A, E, O]) Fire(actions ...A) S {
	vm.emit(EventFire, observability.LevelVerbose, map[string]any{
		"actions": fmt.Sprint(actions),
	})
	return vm.store.Dispatch(actions...)
}

// FireEffect hands effect to the store's effector.
func (vm *ViewModel[S, A, E, O]) FireEffect(effect E) {
	vm.emit(EventFireEffect, observability.LevelVerbose, map[string]any{
		"effect": fmt.Sprint(effect),
	})
	vm.store.DispatchSideEffect(effect)
}

// PostOneTimeAction emits event on the one-time channel without blocking
// the caller. Events are emitted in post order; each waits for a
// subscriber. The returned task ends once the event is delivered.
func (vm *ViewModel[S, A, E, O]) PostOneTimeAction(event O) *execution.Task {
	vm.emit(EventOneTimeAction, observability.LevelVerbose, map[string]any{
		"event": fmt.Sprint(event),
	})
	return vm.Launch(dispatchers.Unconfined, vm.posting, func(ctx context.Context) error {
		return vm.oneTime.Emit(ctx, event)
	})
}

// ShowContent publishes state as the current view state, bypassing the
// store.
func (vm *ViewModel[S, A, E, O]) ShowContent(state S) {
	_ = vm.states.Publish(Content[S]{Value: state})
}

// ShowError replaces the current view state with a Failure of kind.
func (vm *ViewModel[S, A, E, O]) ShowError(kind ErrorKind) {
	_ = vm.states.Publish(Failure{Kind: kind})
}

// HandleException offers err to the ExceptionHandler and reports whether
// it was claimed. Unclaimed failures other than cancellation are
// reported at error level.
func (vm *ViewModel[S, A, E, O]) HandleException(err error) bool {
	vm.emit(EventException, observability.LevelError, map[string]any{
		"error": err.Error(),
	})

	claimed := vm.handler != nil && vm.handler.Handle(err)
	if !claimed && !isCancellation(err) {
		vm.emit(EventUnhandled, observability.LevelError, map[string]any{
			"error": err.Error(),
			"type":  fmt.Sprintf("%T", err),
		})
	}
	return claimed
}

// Close destroys the execution context, waits for its tasks until ctx
// ends, and closes the three channels. Later calls return the first
// result.
func (vm *ViewModel[S, A, E, O]) Close(ctx context.Context) error {
	vm.closeOnce.Do(func() {
		vm.Destroy()
		vm.closeErr = vm.Join(ctx)

		vm.states.Close()
		vm.progress.Close()
		vm.oneTime.Close()

		vm.emit(EventClose, observability.LevelInfo, nil)
	})
	return vm.closeErr
}

func (vm *ViewModel[S, A, E, O]) showProgress(visible bool, p progress.Progress) {
	_ = vm.progress.Publish(progress.Signal{Visible: visible, Progress: p})
}

func (vm *ViewModel[S, A, E, O]) emit(eventType observability.EventType, level observability.Level, data map[string]any) {
	vm.Observer().OnEvent(context.Background(), observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    vm.Name(),
		Data:      data,
	})
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, execution.ErrCancelled)
}

// identical compares with ==. Interface-typed states pass the
// comparability check but panic on == when they hold a slice, map or
// func; such states are treated as different.
func identical[S any](a, b S) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return any(a) == any(b)
}
