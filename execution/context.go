// Package execution runs asynchronous work for a single owner (a screen,
// a view model, a session) on the four dispatcher categories supplied
// by the host.
//
// A Context supervises every task it launches. Each task gets its own
// supervising goroutine that acquires the optional Mutex, runs the body
// on the chosen dispatcher, gates the progress indicator behind a delay,
// and routes failures through the OnError and HandleException hooks on
// the main dispatcher. Cancellation is never reported as a failure.
//
// A body running on main receives a context that marks it as such.
// Waiting through that context (Task.Wait, Future.Await, Mutex.Lock,
// AwaitAll) runs other queued main work meanwhile, so a main body can
// wait for work that itself runs on main.
//
//	ec, err := execution.New(set, execution.Hooks{
//		HandleException: func(err error) bool { return showToast(err) },
//		ShowProgress:    func(visible bool, p progress.Progress) { spinner(visible) },
//	})
//	ec.LaunchNetProgress(execution.ProgressOptions{Progress: progress.Global()}, load)
//	defer ec.Destroy()
package execution

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/statekit/dispatchers"
	"github.com/tailored-agentic-units/statekit/observability"
	"github.com/tailored-agentic-units/statekit/progress"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Hooks are the owner-supplied callbacks. A nil HandleException claims
// nothing; a nil ShowProgress displays nothing.
//
// HandleException runs on the main dispatcher and gets no context, so it
// must not wait for other main work. ShowProgress runs on the goroutine
// driving the indicator while a main body may be running: calls for one
// task are ordered, calls for different tasks may overlap.
type Hooks struct {
	HandleException func(err error) bool
	ShowProgress    func(visible bool, p progress.Progress)
}

// ProgressOptions configures a progress-gated launch.
type ProgressOptions struct {
	Progress progress.Progress

	// Delay before the indicator is shown. Zero uses the configured
	// show-progress delay.
	Delay time.Duration

	// OnError gets the first chance to claim a failure.
	OnError func(err error) bool

	Mutex *Mutex
}

type launchSpec struct {
	mutex        *Mutex
	onError      func(error) bool
	showProgress bool
	progress     progress.Progress
	delay        time.Duration
}

// Context supervises tasks for one owner. It is Active from New until
// Destroy and can not be reactivated.
type Context struct {
	id        string
	cfg       Config
	set       dispatchers.Set
	hooks     Hooks
	observer  observability.Observer
	tracer    trace.Tracer
	meter     metric.Meter
	parent    context.Context
	telemetry *telemetry
	metrics   *Metrics

	root   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	destroyed bool
	tracked   map[string]<-chan struct{}
}

// New creates an active Context over set. Every category of set must
// have a dispatcher.
func New(set dispatchers.Set, hooks Hooks, opts ...Option) (*Context, error) {
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dispatcher set: %w", err)
	}

	c := &Context{
		id:      uuid.Must(uuid.NewV7()).String(),
		cfg:     DefaultConfig(),
		set:     set,
		hooks:   hooks,
		parent:  context.Background(),
		metrics: NewMetrics(),
		tracked: make(map[string]<-chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.observer == nil {
		obs, err := observability.Resolve(c.cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		c.observer = obs
	}

	c.telemetry = newTelemetry(c.tracer, c.meter)
	c.root, c.cancel = context.WithCancel(c.parent)
	return c, nil
}

// ID is a unique identifier assigned at construction.
func (c *Context) ID() string { return c.id }

// Name is the configured context name used in events and spans.
func (c *Context) Name() string { return c.cfg.Name }

// Dispatchers returns the dispatcher set the context was built with.
func (c *Context) Dispatchers() dispatchers.Set { return c.set }

// Observer returns the observer receiving the context's events.
func (c *Context) Observer() observability.Observer { return c.observer }

// Metrics returns a snapshot of the task counters.
func (c *Context) Metrics() MetricsSnapshot { return c.metrics.Snapshot() }

// IsActive reports whether Destroy has not been called yet.
func (c *Context) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.destroyed
}

// Launch runs body on the category's dispatcher. With a non-nil mutex
// the task queues for it now and enters body only while holding it.
func (c *Context) Launch(category dispatchers.Category, mutex *Mutex, body Body) *Task {
	return c.launch("launch", category, launchSpec{mutex: mutex}, body)
}

// LaunchWithProgress is Launch plus a delayed progress indicator: shown
// only when body outlives the delay, and then hidden before the task
// finishes.
func (c *Context) LaunchWithProgress(category dispatchers.Category, opts ProgressOptions, body Body) *Task {
	return c.launch("launch_progress", category, c.progressSpec(opts), body)
}

// LaunchDefault runs body on the default dispatcher.
func (c *Context) LaunchDefault(mutex *Mutex, body Body) *Task {
	return c.launch("launch_default", dispatchers.Default, launchSpec{mutex: mutex}, body)
}

// LaunchUI runs body on the main dispatcher.
func (c *Context) LaunchUI(mutex *Mutex, body Body) *Task {
	return c.launch("launch_ui", dispatchers.Main, launchSpec{mutex: mutex}, body)
}

// LaunchUIProgress runs body on the main dispatcher with a progress
// indicator.
func (c *Context) LaunchUIProgress(opts ProgressOptions, body Body) *Task {
	return c.launch("launch_ui_progress", dispatchers.Main, c.progressSpec(opts), body)
}

// LaunchNet runs body on the io dispatcher without a progress indicator.
func (c *Context) LaunchNet(mutex *Mutex, onError func(error) bool, body Body) *Task {
	return c.launch("launch_net", dispatchers.IO, launchSpec{mutex: mutex, onError: onError}, body)
}

// LaunchNetProgress runs body on the io dispatcher with a progress
// indicator.
func (c *Context) LaunchNetProgress(opts ProgressOptions, body Body) *Task {
	return c.launch("launch_net_progress", dispatchers.IO, c.progressSpec(opts), body)
}

func (c *Context) progressSpec(opts ProgressOptions) launchSpec {
	return launchSpec{
		mutex:        opts.Mutex,
		onError:      opts.OnError,
		showProgress: true,
		progress:     opts.Progress,
		delay:        c.delay(opts.Delay),
	}
}

func (c *Context) delay(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return c.cfg.ProgressDelay()
}

// Destroy cancels every outstanding task and rejects later launches.
// It does not wait; use Join for that. Calls after the first are no-ops.
func (c *Context) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	outstanding := len(c.tracked)
	c.mu.Unlock()

	c.cancel()

	c.emit(context.Background(), EventDestroy, observability.LevelInfo, "execution.Destroy", map[string]any{
		"context":     c.cfg.Name,
		"outstanding": outstanding,
	})
}

// Join waits until no task or future of the context is outstanding.
func (c *Context) Join(ctx context.Context) error {
	for {
		c.mu.Lock()
		pending := make([]<-chan struct{}, 0, len(c.tracked))
		for _, done := range c.tracked {
			pending = append(pending, done)
		}
		c.mu.Unlock()

		if len(pending) == 0 {
			return nil
		}

		for _, done := range pending {
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (c *Context) launch(name string, category dispatchers.Category, spec launchSpec, body Body) *Task {
	return c.launchTask(name, category, spec, func(*Task) Body { return body })
}

// launchTask is launch for bodies that need their own task handle.
func (c *Context) launchTask(name string, category dispatchers.Category, spec launchSpec, build func(t *Task) Body) *Task {
	t := newTask(name, category)

	ctx, cancel, err := c.register(t.id, t.done)
	if err != nil {
		t.settle(StatusRejected, c.reject(name, category, err))
		return t
	}
	t.ctx, t.cancel = ctx, cancel

	// Queue now so waiters are served in launch order.
	var w *waiter
	if spec.mutex != nil {
		w = spec.mutex.reserve()
	}

	c.metrics.RecordLaunch()
	c.emit(ctx, EventTaskLaunch, observability.LevelVerbose, "execution.Launch", map[string]any{
		"task_id":  t.id,
		"name":     name,
		"category": category.String(),
		"mutex":    spec.mutex != nil,
		"progress": spec.showProgress,
	})

	go c.supervise(t, spec, w, build(t))
	return t
}

// register tracks a new unit of work and derives its context.
func (c *Context) register(id string, done <-chan struct{}) (context.Context, context.CancelFunc, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, nil, ErrDestroyed
	}
	ctx, cancel := context.WithCancel(c.root)
	c.tracked[id] = done
	return ctx, cancel, nil
}

func (c *Context) untrack(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tracked, id)
}

// reject reports a launch on a destroyed context to HandleException
// and returns the error the rejected handle carries.
func (c *Context) reject(name string, category dispatchers.Category, cause error) error {
	err := fmt.Errorf("%w: %s on %s", cause, name, category)

	c.metrics.RecordReject()
	c.emit(context.Background(), EventTaskReject, observability.LevelError, "execution.Launch", map[string]any{
		"name":     name,
		"category": category.String(),
		"error":    err,
	})

	// The caller may itself be running on the main dispatcher.
	go func() {
		_ = c.onMain(context.Background(), func() {
			if c.hooks.HandleException != nil {
				c.hooks.HandleException(err)
			}
		})
	}()

	return err
}

func (c *Context) supervise(t *Task, spec launchSpec, w *waiter, body Body) {
	started := time.Now()
	ctx, span := c.telemetry.start(t.ctx, c.cfg.Name, t.id, t.name, t.category, spec)

	status, cause := c.run(ctx, t, spec, w, body)

	var terminal error
	switch status {
	case StatusFailed:
		terminal = &UnhandledError{TaskID: t.id, Err: cause}
	case StatusCancelled:
		terminal = ErrCancelled
	}

	c.telemetry.finish(context.WithoutCancel(ctx), span, t.category, status, cause, started)
	c.metrics.RecordOutcome(status)
	c.untrack(t.id)
	t.cancel()
	t.settle(status, terminal)
}

func (c *Context) run(ctx context.Context, t *Task, spec launchSpec, w *waiter, body Body) (Status, error) {
	if w != nil {
		if err := spec.mutex.wait(ctx, w); err != nil {
			return c.classify(ctx, t, nil, err)
		}
	}
	t.status.Store(int32(StatusActive))

	var gate *progressGate
	if spec.showProgress {
		gate = c.startProgress(t.id, spec.progress, spec.delay)
	}

	err := c.execute(ctx, t.category, body)

	// The mutex covers the body only.
	if w != nil {
		spec.mutex.release()
	}
	if gate != nil {
		gate.stop(ctx)
	}

	return c.classify(ctx, t, spec.onError, err)
}

// classify maps the outcome of a body to a terminal status, running the
// failure hooks when the outcome is a failure.
func (c *Context) classify(ctx context.Context, t *Task, onError func(error) bool, err error) (Status, error) {
	data := map[string]any{
		"task_id":  t.id,
		"name":     t.name,
		"category": t.category.String(),
	}

	if err == nil {
		c.emit(ctx, EventTaskComplete, observability.LevelVerbose, "execution.Task", data)
		return StatusCompleted, nil
	}

	if ctx.Err() != nil || errors.Is(err, ErrCancelled) {
		c.emit(ctx, EventTaskCancel, observability.LevelVerbose, "execution.Task", data)
		return StatusCancelled, err
	}

	data["error"] = err

	var unclaimed *unclaimedError
	if errors.As(err, &unclaimed) {
		err = unclaimed.err
		data["error"] = err
	} else if c.handle(ctx, onError, err) {
		c.emit(ctx, EventTaskRecovered, observability.LevelInfo, "execution.Task", data)
		return StatusRecovered, err
	}

	var perr *PanicError
	if errors.As(err, &perr) {
		data["stack"] = string(perr.Stack)
	}
	c.emit(ctx, EventTaskFail, observability.LevelError, "execution.Task", data)
	return StatusFailed, err
}

// handle offers err to onError and then to HandleException, on the main
// dispatcher, and reports whether either claimed it.
func (c *Context) handle(ctx context.Context, onError func(error) bool, err error) bool {
	handled := false
	runErr := c.onMain(context.WithoutCancel(ctx), func() {
		if onError != nil && onError(err) {
			handled = true
			return
		}
		if c.hooks.HandleException != nil {
			handled = c.hooks.HandleException(err)
		}
	})
	if runErr != nil {
		return false
	}
	return handled
}

// execute runs body on the category's dispatcher and waits for it. A
// body whose context ended before it was scheduled is skipped. A main
// body gets a context marked with the main dispatcher, so its waits can
// run other main work.
func (c *Context) execute(ctx context.Context, category dispatchers.Category, body Body) error {
	d, err := c.set.Get(category)
	if err != nil {
		return err
	}

	bodyCtx := ctx
	if category == dispatchers.Main {
		bodyCtx = withMain(ctx, d)
	}

	done := make(chan struct{})
	var result error
	err = d.Dispatch(ctx, func() {
		defer close(done)
		if err := ctx.Err(); err != nil {
			result = err
			return
		}
		result = invoke(bodyCtx, body)
	})
	if err != nil {
		return err
	}

	<-done
	return result
}

// onMain runs fn on the main dispatcher and waits for it. A panic in fn
// is returned as a *PanicError.
func (c *Context) onMain(ctx context.Context, fn func()) error {
	var perr error
	err := dispatchers.Run(ctx, c.set.Main, func() {
		defer func() {
			if r := recover(); r != nil {
				perr = &PanicError{Value: r, Stack: debug.Stack()}
			}
		}()
		fn()
	})
	if err != nil {
		return err
	}
	return perr
}

func invoke(ctx context.Context, body Body) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return body(ctx)
}

func (c *Context) emit(ctx context.Context, eventType observability.EventType, level observability.Level, source string, data map[string]any) {
	c.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}
