package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/tailored-agentic-units/statekit/channel"
	"github.com/tailored-agentic-units/statekit/host"
	"github.com/tailored-agentic-units/statekit/viewmodel"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to statekit config JSON file (optional)")
		increments = flag.Int("increments", 3, "Number of increments fired as one batch")
		latency    = flag.Duration("latency", 400*time.Millisecond, "Simulated sync latency")
		delay      = flag.Int("progress-delay", -1, "Show-progress delay in milliseconds (overrides config)")
		fail       = flag.Bool("fail", false, "Make the sync call fail")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := host.DefaultConfig()
	if *configFile != "" {
		loaded, err := host.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *delay >= 0 {
		cfg.Execution.ShowProgressDelay = *delay
	}
	if cfg.Execution.Name == "execution" {
		cfg.Execution.Name = "counter"
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))
	}

	h, err := host.New(&cfg, host.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create host: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, h, *increments, *latency, *fail); err != nil {
		log.Printf("Counter run failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownDuration())
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown failed: %v", err)
	}
}

func run(ctx context.Context, h *host.Host, increments int, latency time.Duration, fail bool) error {
	a := &app{latency: latency, fail: fail}

	vm, err := viewmodel.New[*counter, action, effect, string](h.Dispatchers(), viewmodel.HandlerFunc(a.handle),
		viewmodel.Definition[*counter, action, effect]{
			Initial:  &counter{},
			Reducer:  reduce,
			Effector: a.sideEffect,
		},
		h.ExecutionOptions()...,
	)
	if err != nil {
		return fmt.Errorf("failed to create view model: %w", err)
	}
	a.vm = vm

	var printers sync.WaitGroup
	printers.Add(2)
	go func() {
		defer printers.Done()
		watch(ctx, "state", vm.States().Subscribe())
	}()
	go func() {
		defer printers.Done()
		watch(ctx, "progress", vm.Progress().Subscribe())
	}()

	batch := make([]action, max(increments, 0))
	for i := range batch {
		batch[i] = action{kind: actIncrement}
	}
	vm.Fire(batch...)

	vm.FireEffect(effectSync)
	if err := a.sync.Wait(ctx); err != nil {
		fmt.Printf("sync: %v (status %s)\n", err, a.sync.Status())
	}

	actions := vm.OneTimeActions().Subscribe()
	vm.FireEffect(effectFinish)
	if event, err := actions.Receive(ctx); err == nil {
		fmt.Printf("one-time: %s\n", event)
	}
	actions.Close()

	m := vm.Metrics()
	fmt.Printf("tasks: launched=%d completed=%d recovered=%d failed=%d cancelled=%d\n",
		m.Launched, m.Completed, m.Recovered, m.Failed, m.Cancelled)

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = vm.Close(closeCtx)
	printers.Wait()
	return err
}

func watch[T fmt.Stringer](ctx context.Context, label string, sub *channel.Subscription[T]) {
	defer sub.Close()
	for {
		v, err := sub.Receive(ctx)
		if err != nil {
			if !errors.Is(err, channel.ErrClosed) {
				fmt.Printf("%s: %v\n", label, err)
			}
			return
		}
		fmt.Printf("%s: %s\n", label, v)
	}
}
