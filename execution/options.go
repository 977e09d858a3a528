package execution

import (
	"context"

	"github.com/tailored-agentic-units/statekit/observability"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Context after config-driven initialization.
type Option func(*Context)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(c *Context) { c.cfg = cfg }
}

// WithObserver overrides the observer named in the configuration.
func WithObserver(o observability.Observer) Option {
	return func(c *Context) { c.observer = o }
}

// WithTracer sets the tracer used for task spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Context) { c.tracer = t }
}

// WithMeter sets the meter used for task instruments.
func WithMeter(m metric.Meter) Option {
	return func(c *Context) { c.meter = m }
}

// WithParent derives the context's lifetime from parent: cancelling
// parent cancels every task, although the context stays active.
func WithParent(parent context.Context) Option {
	return func(c *Context) { c.parent = parent }
}
