package execution

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tailored-agentic-units/statekit/observability"
	"github.com/tailored-agentic-units/statekit/progress"
)

// progressGate shows a progress indicator once a delay has passed and
// hides it again on stop. The hide signal is only sent for an indicator
// that was actually shown.
type progressGate struct {
	c      *Context
	taskID string
	p      progress.Progress
	timer  *time.Timer

	mu      sync.Mutex
	stopped bool
	shown   bool
}

func (c *Context) startProgress(taskID string, p progress.Progress, delay time.Duration) *progressGate {
	g := &progressGate{c: c, taskID: taskID, p: p}
	g.timer = time.AfterFunc(delay, g.show)
	return g
}

// show runs on the timer goroutine. The main dispatcher may be busy
// with the very body being waited for, so the indicator is displayed
// from here. A stop that wins the race turns show into a no-op.
func (g *progressGate) show() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}
	g.c.display(true, g.p)
	g.shown = true

	g.c.emit(context.Background(), EventProgressShow, observability.LevelVerbose, "execution.Progress", map[string]any{
		"task_id":  g.taskID,
		"progress": g.p.String(),
	})
}

// stop cancels a pending show and, if the indicator is visible, hides
// it before returning. A show already in flight completes first.
func (g *progressGate) stop(ctx context.Context) {
	g.timer.Stop()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopped = true
	if !g.shown {
		return
	}

	g.c.display(false, g.p)

	g.c.emit(ctx, EventProgressHide, observability.LevelVerbose, "execution.Progress", map[string]any{
		"task_id":  g.taskID,
		"progress": g.p.String(),
	})
}

// display runs the progress hooks and ShowProgress, recovering a panic
// so a faulty hook can not take down the goroutine driving the gate.
func (c *Context) display(visible bool, p progress.Progress) {
	defer func() {
		if r := recover(); r != nil {
			c.emit(context.Background(), EventProgressPanic, observability.LevelError, "execution.Progress", map[string]any{
				"visible": visible,
				"panic":   fmt.Sprint(r),
				"stack":   string(debug.Stack()),
			})
		}
	}()

	if visible {
		p.BeforeShow()
	} else {
		p.BeforeHide()
	}
	if c.hooks.ShowProgress != nil {
		c.hooks.ShowProgress(visible, p)
	}
}
