package execution

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/statekit/dispatchers"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName is the scope name for execution spans and metrics.
const instrumentationName = "github.com/tailored-agentic-units/statekit/execution"

// telemetry wraps each task in a span and records its duration and
// outcome. With the global providers unset, everything is a noop.
type telemetry struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
	outcomes metric.Int64Counter
}

func newTelemetry(tracer trace.Tracer, meter metric.Meter) *telemetry {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	// On error the API returns noop instruments.
	duration, _ := meter.Float64Histogram(
		"execution.task.duration",
		metric.WithDescription("Duration of task execution in seconds"),
		metric.WithUnit("s"),
	)
	outcomes, _ := meter.Int64Counter(
		"execution.task.outcomes",
		metric.WithDescription("Terminal outcomes of launched tasks"),
		metric.WithUnit("{task}"),
	)

	return &telemetry{
		tracer:   tracer,
		duration: duration,
		outcomes: outcomes,
	}
}

// start opens the span of one task or future. Attributes:
// execution.context, task.id, task.name, task.category, task.mutex,
// task.progress.
func (tm *telemetry) start(ctx context.Context, contextName, id, name string, category dispatchers.Category, spec launchSpec) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, "execution.task",
		trace.WithAttributes(
			attribute.String("execution.context", contextName),
			attribute.String("task.id", id),
			attribute.String("task.name", name),
			attribute.String("task.category", category.String()),
			attribute.Bool("task.mutex", spec.mutex != nil),
			attribute.Bool("task.progress", spec.showProgress),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (tm *telemetry) finish(ctx context.Context, span trace.Span, category dispatchers.Category, status Status, cause error, started time.Time) {
	switch status {
	case StatusFailed:
		span.RecordError(cause)
		span.SetStatus(codes.Error, cause.Error())
	case StatusRecovered:
		span.RecordError(cause)
		span.SetStatus(codes.Ok, "")
	case StatusCompleted:
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("task.category", category.String()),
		attribute.String("outcome", status.String()),
	)
	tm.duration.Record(ctx, time.Since(started).Seconds(), attrs)
	tm.outcomes.Add(ctx, 1, attrs)
}
