package dispatchers

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tailored-agentic-units/statekit/observability"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Pool runs dispatched functions on their own goroutines, with at most
// a fixed number running at once. An optional rate limit bounds how fast
// functions start, which keeps bursts of I/O work from flooding a backend.
type Pool struct {
	name     string
	workers  int
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	observer observability.Observer
}

// NewPool creates a Pool from cfg.
func NewPool(name string, cfg PoolConfig, observer observability.Observer) *Pool {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	workers := workerCount(cfg.MaxWorkers)
	p := &Pool{
		name:     name,
		workers:  workers,
		sem:      semaphore.NewWeighted(int64(workers)),
		observer: observer,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	observer.OnEvent(context.Background(), observability.Event{
		Type:      EventDispatcherStart,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "dispatchers.Pool",
		Data: map[string]any{
			"name":         name,
			"worker_count": workers,
			"rate_limit":   cfg.RateLimit,
		},
	})

	return p
}

func (p *Pool) Name() string { return p.name }

// Workers returns the maximum number of concurrently running functions.
func (p *Pool) Workers() int { return p.workers }

func (p *Pool) Dispatch(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("%w: %s", ErrClosed, p.name)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Accepted work always runs, so neither wait is bound to a
		// cancellable context.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)

		if p.limiter != nil {
			_ = p.limiter.Wait(context.Background())
		}

		p.run(fn)
	}()

	return nil
}

// Close stops accepting work and waits for every accepted function to
// finish or ctx to end.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	alreadyClosed := p.closed
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if !alreadyClosed {
			p.observer.OnEvent(ctx, observability.Event{
				Type:      EventDispatcherStop,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "dispatchers.Pool",
				Data:      map[string]any{"name": p.name},
			})
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher %s close: %w", p.name, ctx.Err())
	}
}

func (p *Pool) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.observer.OnEvent(context.Background(), observability.Event{
				Type:      EventDispatcherPanic,
				Level:     observability.LevelError,
				Timestamp: time.Now(),
				Source:    "dispatchers.Pool",
				Data: map[string]any{
					"name":  p.name,
					"panic": fmt.Sprint(r),
					"stack": string(debug.Stack()),
				},
			})
		}
	}()
	fn()
}

// workerCount returns maxWorkers when set, otherwise the CPU count with
// a floor of two so a single blocked function cannot stall the pool.
func workerCount(maxWorkers int) int {
	if maxWorkers > 0 {
		return maxWorkers
	}
	return max(runtime.NumCPU(), 2)
}
