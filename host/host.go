// Package host is the composition root for applications built on
// statekit.
//
// A Host is created from a Config. It builds the reference dispatcher
// set, resolves the observer, and optionally builds OpenTelemetry SDK
// providers. Execution contexts and view models are then created with
// the host's dispatchers and execution options.
//
//	cfg, err := host.LoadConfig("statekit.json")
//	h, err := host.New(cfg, host.WithLogger(logger))
//	defer h.Shutdown(context.Background())
//	ec, err := execution.New(h.Dispatchers(), hooks, h.ExecutionOptions()...)
package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/statekit/dispatchers"
	"github.com/tailored-agentic-units/statekit/execution"
	"github.com/tailored-agentic-units/statekit/observability"
)

const instrumentationName = "github.com/tailored-agentic-units/statekit"

// Option configures a Host after config-driven initialization.
type Option func(*Host)

// WithLogger registers logger as the "slog" observer before the config's
// observer names are resolved.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) { h.logger = logger }
}

// WithObserver overrides the config-resolved observer.
func WithObserver(o observability.Observer) Option {
	return func(h *Host) { h.observer = o }
}

// WithObservers adds observers that receive every event alongside the
// host observer.
func WithObservers(observers ...observability.Observer) Option {
	return func(h *Host) { h.extra = append(h.extra, observers...) }
}

// WithSpanProcessor adds a span processor to the tracer provider. Only
// used when telemetry is enabled.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(h *Host) { h.spanProcessors = append(h.spanProcessors, sp) }
}

// WithMetricReader adds a reader to the meter provider. Only used when
// telemetry is enabled.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(h *Host) { h.metricReaders = append(h.metricReaders, r) }
}

// Host owns the dispatchers and telemetry providers shared by every
// execution context of an application.
type Host struct {
	cfg      Config
	logger   *slog.Logger
	observer observability.Observer
	extra    []observability.Observer
	set      dispatchers.Set

	spanProcessors []sdktrace.SpanProcessor
	metricReaders  []sdkmetric.Reader
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a Host from configuration.
func New(cfg *Config, opts ...Option) (*Host, error) {
	h := &Host{cfg: *cfg}

	for _, opt := range opts {
		opt(h)
	}

	if h.logger != nil {
		observability.RegisterObserver("slog", observability.NewSlogObserver(h.logger))
	}

	if h.observer == nil {
		obs, err := observability.Resolve(h.cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		h.observer = obs
	}
	if len(h.extra) > 0 {
		h.observer = observability.NewMultiObserver(append([]observability.Observer{h.observer}, h.extra...)...)
	}

	set, err := dispatchers.New(h.cfg.Dispatchers)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatchers: %w", err)
	}
	h.set = set

	if h.cfg.Telemetry.Enabled {
		h.startTelemetry()
	}

	h.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "host",
		Data: map[string]any{
			"observer":  h.cfg.Observer,
			"telemetry": h.cfg.Telemetry.Enabled,
		},
	})

	return h, nil
}

func (h *Host) startTelemetry() {
	res := resource.NewSchemaless(attribute.String("service.name", h.cfg.Telemetry.ServiceName))

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, sp := range h.spanProcessors {
		traceOpts = append(traceOpts, sdktrace.WithSpanProcessor(sp))
	}
	h.tracerProvider = sdktrace.NewTracerProvider(traceOpts...)

	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range h.metricReaders {
		meterOpts = append(meterOpts, sdkmetric.WithReader(r))
	}
	h.meterProvider = sdkmetric.NewMeterProvider(meterOpts...)
}

// Config returns the configuration the host was built from.
func (h *Host) Config() Config { return h.cfg }

// Dispatchers returns the shared dispatcher set.
func (h *Host) Dispatchers() dispatchers.Set { return h.set }

// Observer returns the resolved observer.
func (h *Host) Observer() observability.Observer { return h.observer }

// ExecutionOptions returns the options that bind an execution context
// to the host's configuration, observer and telemetry providers.
func (h *Host) ExecutionOptions() []execution.Option {
	opts := []execution.Option{
		execution.WithConfig(h.cfg.Execution),
		execution.WithObserver(h.observer),
	}
	if h.tracerProvider != nil {
		opts = append(opts, execution.WithTracer(h.tracerProvider.Tracer(instrumentationName)))
	}
	if h.meterProvider != nil {
		opts = append(opts, execution.WithMeter(h.meterProvider.Meter(instrumentationName)))
	}
	return opts
}

// NewContext creates an execution context on the host's dispatchers.
func (h *Host) NewContext(hooks execution.Hooks, opts ...execution.Option) (*execution.Context, error) {
	return execution.New(h.set, hooks, append(h.ExecutionOptions(), opts...)...)
}

// Shutdown closes the dispatchers and flushes the telemetry providers
// concurrently. Without a deadline on ctx the configured shutdown
// timeout applies. Later calls return the first result.
func (h *Host) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.cfg.ShutdownDuration())
			defer cancel()
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return h.set.Close(gctx) })
		if h.tracerProvider != nil {
			g.Go(func() error { return h.tracerProvider.Shutdown(gctx) })
		}
		if h.meterProvider != nil {
			g.Go(func() error { return h.meterProvider.Shutdown(gctx) })
		}
		h.shutdownErr = g.Wait()

		level := observability.LevelInfo
		data := map[string]any{}
		if h.shutdownErr != nil {
			level = observability.LevelError
			data["error"] = h.shutdownErr
		}
		h.observer.OnEvent(context.Background(), observability.Event{
			Type:      EventShutdown,
			Level:     level,
			Timestamp: time.Now(),
			Source:    "host",
			Data:      data,
		})
	})
	return h.shutdownErr
}
