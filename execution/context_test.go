package execution_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tailored-agentic-units/statekit/dispatchers"
	"github.com/tailored-agentic-units/statekit/execution"
	"github.com/tailored-agentic-units/statekit/observability"
	"github.com/tailored-agentic-units/statekit/progress"
)

// mainTracker wraps the main dispatcher and reports whether the calling
// code is currently running on it.
type mainTracker struct {
	dispatchers.Dispatcher
	running atomic.Int32
}

func (m *mainTracker) Dispatch(ctx context.Context, fn func()) error {
	return m.Dispatcher.Dispatch(ctx, func() {
		m.running.Add(1)
		defer m.running.Add(-1)
		fn()
	})
}

func (m *mainTracker) Pump(ctx context.Context, until <-chan struct{}) error {
	return m.Dispatcher.(dispatchers.Pumper).Pump(ctx, until)
}

func (m *mainTracker) onMain() bool { return m.running.Load() > 0 }

func newTestSet(t *testing.T) (dispatchers.Set, *mainTracker) {
	t.Helper()

	main := &mainTracker{Dispatcher: dispatchers.NewSequenced("main", 64, nil)}
	set := dispatchers.Set{
		Default:    dispatchers.NewPool("default", dispatchers.PoolConfig{MaxWorkers: 4}, nil),
		Main:       main,
		Unconfined: dispatchers.NewUnconfined(),
		IO:         dispatchers.NewPool("io", dispatchers.PoolConfig{MaxWorkers: 8}, nil),
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Set.Close can not see the Sequenced behind the tracker.
		_ = main.Dispatcher.(dispatchers.Closer).Close(ctx)
		_ = set.Close(ctx)
	})

	return set, main
}

func newTestContext(t *testing.T, hooks execution.Hooks, opts ...execution.Option) (*execution.Context, *mainTracker) {
	t.Helper()

	set, main := newTestSet(t)
	opts = append([]execution.Option{execution.WithObserver(observability.NoOpObserver{})}, opts...)

	ec, err := execution.New(set, hooks, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	t.Cleanup(func() {
		ec.Destroy()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ec.Join(ctx); err != nil {
			t.Errorf("Join() error = %v", err)
		}
	})

	return ec, main
}

func waitTask(t *testing.T, task *execution.Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := task.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("task %s did not finish", task.ID())
	}
	return err
}

// signalLog records ShowProgress calls.
type signalLog struct {
	mu      sync.Mutex
	signals []bool
}

func (l *signalLog) record(visible bool, _ progress.Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.signals = append(l.signals, visible)
}

func (l *signalLog) snapshot() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.signals...)
}

func TestNew_InvalidSet(t *testing.T) {
	_, err := execution.New(dispatchers.Set{}, execution.Hooks{})
	if !errors.Is(err, dispatchers.ErrMissingDispatcher) {
		t.Errorf("New() error = %v, want ErrMissingDispatcher", err)
	}
}

func TestNew_UnknownObserver(t *testing.T) {
	set, _ := newTestSet(t)
	cfg := execution.DefaultConfig()
	cfg.Observer = "missing"

	if _, err := execution.New(set, execution.Hooks{}, execution.WithConfig(cfg)); err == nil {
		t.Error("New() should fail for unknown observer")
	}
}

func TestLaunch_Completes(t *testing.T) {
	ec, _ := newTestContext(t, execution.Hooks{})

	categories := []dispatchers.Category{
		dispatchers.Default,
		dispatchers.Main,
		dispatchers.Unconfined,
		dispatchers.IO,
	}

	for _, category := range categories {
		t.Run(category.String(), func(t *testing.T) {
			var ran atomic.Bool
			task := ec.Launch(category, nil, func(ctx context.Context) error {
				ran.Store(true)
				return nil
			})

			if err := waitTask(t, task); err != nil {
				t.Fatalf("Wait() error = %v", err)
			}
			if !ran.Load() {
				t.Error("body did not run")
			}
			if task.Status() != execution.StatusCompleted {
				t.Errorf("Status() = %s, want completed", task.Status())
			}
			if task.Category() != category {
				t.Errorf("Category() = %s, want %s", task.Category(), category)
			}
		})
	}
}

func TestLaunch_MainBodyRunsOnMain(t *testing.T) {
	ec, main := newTestContext(t, execution.Hooks{})

	var onMain atomic.Bool
	task := ec.LaunchUI(nil, func(ctx context.Context) error {
		onMain.Store(main.onMain())
		return nil
	})
	_ = waitTask(t, task)

	if !onMain.Load() {
		t.Error("LaunchUI body did not run on the main dispatcher")
	}
}

func TestLaunchUI_AwaitsMainFuture(t *testing.T) {
	ec, main := newTestContext(t, execution.Hooks{})

	var got int
	var innerOnMain atomic.Bool
	task := ec.LaunchUI(nil, func(ctx context.Context) error {
		f := execution.AsyncUI(ec, func(ctx context.Context) (int, error) {
			innerOnMain.Store(main.onMain())
			return 42, nil
		})
		v, err := f.Await(ctx)
		got = v
		return err
	})

	if err := waitTask(t, task); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Await() = %d, want 42", got)
	}
	if !innerOnMain.Load() {
		t.Error("AsyncUI body did not run on the main dispatcher")
	}
	if task.Status() != execution.StatusCompleted {
		t.Errorf("Status() = %s, want completed", task.Status())
	}
}

func TestLaunchUI_WaitsForMainTask(t *testing.T) {
	ec, _ := newTestContext(t, execution.Hooks{})

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	task := ec.LaunchUI(nil, func(ctx context.Context) error {
		record("outer")
		inner := ec.LaunchUI(nil, func(ctx context.Context) error {
			record("inner")
			return nil
		})
		if err := inner.Wait(ctx); err != nil {
			return err
		}
		record("resumed")
		return nil
	})

	if err := waitTask(t, task); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"outer", "inner", "resumed"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestLaunchUI_AwaitAllMainFutures(t *testing.T) {
	ec, _ := newTestContext(t, execution.Hooks{})

	var got []int
	task := ec.LaunchUI(nil, func(ctx context.Context) error {
		var futures []*execution.Future[int]
		for i := range 3 {
			futures = append(futures, execution.AsyncUI(ec, func(ctx context.Context) (int, error) {
				return i * 10, nil
			}))
		}
		values, err := execution.AwaitAll(ctx, futures...)
		got = values
		return err
	})

	if err := waitTask(t, task); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 10 || got[2] != 20 {
		t.Errorf("AwaitAll() = %v, want [0 10 20]", got)
	}
}

func TestOnMain(t *testing.T) {
	ec, _ := newTestContext(t, execution.Hooks{})

	tests := []struct {
		category dispatchers.Category
		want     bool
	}{
		{dispatchers.Main, true},
		{dispatchers.Default, false},
		{dispatchers.IO, false},
		{dispatchers.Unconfined, false},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			var got atomic.Bool
			task := ec.Launch(tt.category, nil, func(ctx context.Context) error {
				got.Store(execution.OnMain(ctx))
				return nil
			})
			_ = waitTask(t, task)

			if got.Load() != tt.want {
				t.Errorf("OnMain() = %v, want %v", got.Load(), tt.want)
			}
		})
	}
}

func TestFailureChain(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name           string
		onError        func(error) bool
		handle         bool
		wantStatus     execution.Status
		wantHandleCall bool
	}{
		{
			name:       "onError claims",
			onError:    func(error) bool { return true },
			wantStatus: execution.StatusRecovered,
		},
		{
			name:           "handleException claims",
			onError:        func(error) bool { return false },
			handle:         true,
			wantStatus:     execution.StatusRecovered,
			wantHandleCall: true,
		},
		{
			name:           "nil onError falls through",
			handle:         true,
			wantStatus:     execution.StatusRecovered,
			wantHandleCall: true,
		},
		{
			name:           "nobody claims",
			onError:        func(error) bool { return false },
			wantStatus:     execution.StatusFailed,
			wantHandleCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var handleCalls atomic.Int32
			var handledOnMain atomic.Bool
			var main *mainTracker

			var ec *execution.Context
			ec, main = newTestContext(t, execution.Hooks{
				HandleException: func(err error) bool {
					handleCalls.Add(1)
					handledOnMain.Store(main.onMain())
					if !errors.Is(err, boom) {
						t.Errorf("HandleException got %v, want boom", err)
					}
					return tt.handle
				},
			})

			task := ec.LaunchNet(nil, tt.onError, func(ctx context.Context) error {
				return boom
			})
			err := waitTask(t, task)

			if task.Status() != tt.wantStatus {
				t.Errorf("Status() = %s, want %s", task.Status(), tt.wantStatus)
			}
			if got := handleCalls.Load() > 0; got != tt.wantHandleCall {
				t.Errorf("HandleException called = %v, want %v", got, tt.wantHandleCall)
			}
			if tt.wantHandleCall && !handledOnMain.Load() {
				t.Error("HandleException did not run on the main dispatcher")
			}

			if tt.wantStatus == execution.StatusFailed {
				var unhandled *execution.UnhandledError
				if !errors.As(err, &unhandled) {
					t.Fatalf("Wait() error = %v, want *UnhandledError", err)
				}
				if unhandled.TaskID != task.ID() {
					t.Errorf("TaskID = %q, want %q", unhandled.TaskID, task.ID())
				}
				if !errors.Is(err, boom) {
					t.Errorf("Wait() error = %v, want wrapping boom", err)
				}
			} else if err != nil {
				t.Errorf("Wait() error = %v, want nil for recovered task", err)
			}
		})
	}
}

func TestFailureChain_OnErrorRunsOnMain(t *testing.T) {
	ec, main := newTestContext(t, execution.Hooks{})

	var onMain atomic.Bool
	task := ec.LaunchNetProgress(execution.ProgressOptions{
		OnError: func(error) bool {
			onMain.Store(main.onMain())
			return true
		},
	}, func(ctx context.Context) error {
		return errors.New("fail")
	})
	_ = waitTask(t, task)

	if !onMain.Load() {
		t.Error("OnError did not run on the main dispatcher")
	}
}

func TestLaunch_PanicBecomesFailure(t *testing.T) {
	got := make(chan error, 1)
	ec, _ := newTestContext(t, execution.Hooks{
		HandleException: func(err error) bool {
			got <- err
			return true
		},
	})

	task := ec.LaunchDefault(nil, func(ctx context.Context) error {
		panic("kaboom")
	})
	_ = waitTask(t, task)

	err := <-got
	var perr *execution.PanicError
	if !errors.As(err, &perr) {
		t.Fatalf("HandleException got %T, want *PanicError", err)
	}
	if perr.Value != "kaboom" {
		t.Errorf("Value = %v, want kaboom", perr.Value)
	}
	if len(perr.Stack) == 0 {
		t.Error("Stack is empty")
	}
	if task.Status() != execution.StatusRecovered {
		t.Errorf("Status() = %s, want recovered", task.Status())
	}
}

func TestTask_Cancel(t *testing.T) {
	var handled atomic.Bool
	ec, _ := newTestContext(t, execution.Hooks{
		HandleException: func(error) bool {
			handled.Store(true)
			return true
		},
	})

	started := make(chan struct{})
	task := ec.LaunchDefault(nil, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	task.Cancel()

	if err := waitTask(t, task); !errors.Is(err, execution.ErrCancelled) {
		t.Errorf("Wait() error = %v, want ErrCancelled", err)
	}
	if task.Status() != execution.StatusCancelled {
		t.Errorf("Status() = %s, want cancelled", task.Status())
	}
	if handled.Load() {
		t.Error("cancellation reached HandleException")
	}
}

func TestDestroy_CancelsOutstandingTasks(t *testing.T) {
	var handled atomic.Int32
	var onErrorCalls atomic.Int32
	rec := observability.NewRecorder()
	ec, _ := newTestContext(t, execution.Hooks{
		HandleException: func(error) bool {
			handled.Add(1)
			return false
		},
	}, execution.WithObserver(rec))

	mutex := execution.NewMutex()
	running := make(chan struct{}, 3)
	var tasks []*execution.Task

	for range 3 {
		tasks = append(tasks, ec.LaunchNet(mutex, func(error) bool {
			onErrorCalls.Add(1)
			return false
		}, func(ctx context.Context) error {
			running <- struct{}{}
			<-ctx.Done()
			return ctx.Err()
		}))
	}
	tasks = append(tasks, ec.LaunchDefault(nil, func(ctx context.Context) error {
		<-ctx.Done()
		return errors.New("wrapped shutdown")
	}))

	// the first mutex holder is running, the other two are queued
	<-running

	ec.Destroy()
	ec.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ec.Join(ctx); err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	for i, task := range tasks {
		if task.Status() != execution.StatusCancelled {
			t.Errorf("task %d Status() = %s, want cancelled", i, task.Status())
		}
	}
	if handled.Load() != 0 || onErrorCalls.Load() != 0 {
		t.Errorf("hooks called (%d, %d) during destroy, want none", handled.Load(), onErrorCalls.Load())
	}
	if ec.IsActive() {
		t.Error("IsActive() = true after Destroy")
	}
	if rec.Count(execution.EventDestroy) != 1 {
		t.Errorf("destroy events = %d, want 1", rec.Count(execution.EventDestroy))
	}

	m := ec.Metrics()
	if m.Cancelled != 4 || m.Active != 0 {
		t.Errorf("Metrics() = %+v, want 4 cancelled and 0 active", m)
	}
}

func TestLaunch_AfterDestroyIsRejected(t *testing.T) {
	got := make(chan error, 1)
	ec, _ := newTestContext(t, execution.Hooks{
		HandleException: func(err error) bool {
			got <- err
			return true
		},
	})
	ec.Destroy()

	task := ec.LaunchUI(nil, func(ctx context.Context) error {
		t.Error("body of rejected task ran")
		return nil
	})

	if task.Status() != execution.StatusRejected {
		t.Errorf("Status() = %s, want rejected", task.Status())
	}
	if err := task.Err(); !errors.Is(err, execution.ErrDestroyed) {
		t.Errorf("Err() = %v, want ErrDestroyed", err)
	}

	select {
	case err := <-got:
		if !errors.Is(err, execution.ErrDestroyed) {
			t.Errorf("HandleException got %v, want ErrDestroyed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("HandleException was not called for launch after destroy")
	}

	if ec.Metrics().Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", ec.Metrics().Rejected)
	}
}

func TestProgress_FastBodyNeverShown(t *testing.T) {
	log := &signalLog{}
	ec, _ := newTestContext(t, execution.Hooks{ShowProgress: log.record})

	task := ec.LaunchWithProgress(dispatchers.IO, execution.ProgressOptions{
		Progress: progress.Global(),
		Delay:    250 * time.Millisecond,
	}, func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	_ = waitTask(t, task)

	// give a misbehaving timer the chance to fire
	time.Sleep(300 * time.Millisecond)

	if got := log.snapshot(); len(got) != 0 {
		t.Errorf("signals = %v, want none", got)
	}
}

func TestProgress_SlowBodyShownThenHidden(t *testing.T) {
	log := &signalLog{}
	ec, _ := newTestContext(t, execution.Hooks{ShowProgress: log.record})

	task := ec.LaunchNetProgress(execution.ProgressOptions{
		Progress: progress.Local().WithModal(true),
	}, func(ctx context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	_ = waitTask(t, task)

	got := log.snapshot()
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("signals = %v, want [true false]", got)
	}
}

func TestProgress_MainBodyShownWhileRunning(t *testing.T) {
	shownAt := make(chan time.Time, 1)
	ec, _ := newTestContext(t, execution.Hooks{
		ShowProgress: func(visible bool, _ progress.Progress) {
			if visible {
				shownAt <- time.Now()
			}
		},
	})

	var ended time.Time
	task := ec.LaunchUIProgress(execution.ProgressOptions{
		Progress: progress.Global(),
		Delay:    50 * time.Millisecond,
	}, func(ctx context.Context) error {
		time.Sleep(400 * time.Millisecond)
		ended = time.Now()
		return nil
	})
	_ = waitTask(t, task)

	select {
	case at := <-shownAt:
		if !at.Before(ended) {
			t.Errorf("indicator shown %v after the main body ended, want while it runs", at.Sub(ended))
		}
	default:
		t.Fatal("indicator was never shown")
	}
}

func TestProgress_MutexReleasedBeforeHide(t *testing.T) {
	nextStarted := make(chan struct{})
	var hideSawNext atomic.Bool
	ec, _ := newTestContext(t, execution.Hooks{
		ShowProgress: func(visible bool, _ progress.Progress) {
			if visible {
				return
			}
			select {
			case <-nextStarted:
				hideSawNext.Store(true)
			case <-time.After(2 * time.Second):
			}
		},
	})

	mutex := execution.NewMutex()
	first := ec.LaunchNetProgress(execution.ProgressOptions{
		Progress: progress.Global(),
		Delay:    10 * time.Millisecond,
		Mutex:    mutex,
	}, func(ctx context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	next := ec.LaunchNet(mutex, nil, func(ctx context.Context) error {
		close(nextStarted)
		return nil
	})

	_ = waitTask(t, first)
	_ = waitTask(t, next)

	if !hideSawNext.Load() {
		t.Error("mutex was still held while the indicator was being hidden")
	}
}

func TestProgress_PanickingHookRecovered(t *testing.T) {
	rec := observability.NewRecorder()
	ec, _ := newTestContext(t, execution.Hooks{
		ShowProgress: func(visible bool, _ progress.Progress) {
			panic("display broke")
		},
	}, execution.WithObserver(rec))

	task := ec.LaunchNetProgress(execution.ProgressOptions{
		Progress: progress.Global(),
		Delay:    10 * time.Millisecond,
	}, func(ctx context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})

	if err := waitTask(t, task); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if rec.Count(execution.EventProgressPanic) != 2 {
		t.Errorf("progress panic events = %d, want 2", rec.Count(execution.EventProgressPanic))
	}
}

type countingHooks struct {
	shows atomic.Int32
	hides atomic.Int32
}

func (h *countingHooks) BeforeShow() { h.shows.Add(1) }
func (h *countingHooks) BeforeHide() { h.hides.Add(1) }

func TestProgress_HooksAndCancellation(t *testing.T) {
	log := &signalLog{}
	ec, _ := newTestContext(t, execution.Hooks{ShowProgress: log.record})

	hooks := &countingHooks{}
	task := ec.LaunchWithProgress(dispatchers.Default, execution.ProgressOptions{
		Progress: progress.Global().WithHooks(hooks),
		Delay:    20 * time.Millisecond,
	}, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	time.Sleep(100 * time.Millisecond)
	task.Cancel()
	_ = waitTask(t, task)

	got := log.snapshot()
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("signals = %v, want [true false] even when cancelled", got)
	}
	if hooks.shows.Load() != 1 || hooks.hides.Load() != 1 {
		t.Errorf("hooks = (%d, %d), want (1, 1)", hooks.shows.Load(), hooks.hides.Load())
	}
	if task.Status() != execution.StatusCancelled {
		t.Errorf("Status() = %s, want cancelled", task.Status())
	}
}

func TestJoin_RespectsContext(t *testing.T) {
	ec, _ := newTestContext(t, execution.Hooks{})

	release := make(chan struct{})
	ec.LaunchDefault(nil, func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := ec.Join(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Join() error = %v, want DeadlineExceeded", err)
	}
	close(release)
}

func TestWithParent_CancelsTasks(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ec, _ := newTestContext(t, execution.Hooks{}, execution.WithParent(parent))

	task := ec.LaunchDefault(nil, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()

	if err := waitTask(t, task); !errors.Is(err, execution.ErrCancelled) {
		t.Errorf("Wait() error = %v, want ErrCancelled", err)
	}
	if !ec.IsActive() {
		t.Error("parent cancellation should not destroy the context")
	}
}

func TestMetrics_Counts(t *testing.T) {
	ec, _ := newTestContext(t, execution.Hooks{
		HandleException: func(error) bool { return true },
	})

	_ = waitTask(t, ec.LaunchDefault(nil, func(ctx context.Context) error { return nil }))
	_ = waitTask(t, ec.LaunchDefault(nil, func(ctx context.Context) error { return errors.New("x") }))

	m := ec.Metrics()
	if m.Launched != 2 || m.Completed != 1 || m.Recovered != 1 || m.Active != 0 {
		t.Errorf("Metrics() = %+v, want 2 launched, 1 completed, 1 recovered", m)
	}
}

func TestConfig_MergeAndDelay(t *testing.T) {
	cfg := execution.DefaultConfig()
	if cfg.ProgressDelay() != execution.DefaultShowProgressDelay {
		t.Errorf("ProgressDelay() = %v, want %v", cfg.ProgressDelay(), execution.DefaultShowProgressDelay)
	}

	cfg.Merge(&execution.Config{ShowProgressDelay: 100, Name: "screen"})
	if cfg.ProgressDelay() != 100*time.Millisecond {
		t.Errorf("ProgressDelay() = %v, want 100ms", cfg.ProgressDelay())
	}
	if cfg.Name != "screen" || cfg.Observer != "slog" {
		t.Errorf("Merge result = %+v", cfg)
	}

	var zero execution.Config
	if zero.ProgressDelay() != execution.DefaultShowProgressDelay {
		t.Errorf("zero ProgressDelay() = %v, want default", zero.ProgressDelay())
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   execution.Status
		want     string
		terminal bool
	}{
		{execution.StatusPending, "pending", false},
		{execution.StatusActive, "active", false},
		{execution.StatusCompleted, "completed", true},
		{execution.StatusRecovered, "recovered", true},
		{execution.StatusFailed, "failed", true},
		{execution.StatusCancelled, "cancelled", true},
		{execution.StatusRejected, "rejected", true},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}
