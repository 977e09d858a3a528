// Package observability provides the event model shared by the
// dispatchers, store, execution, view-model and host layers.
//
// Every layer reports what it does as an Event sent to one Observer.
// Event types are grouped in families named by their prefix:
//
//	dispatcher.*  start, stop and recovered panics of dispatchers
//	store.*       dispatch batches, side effects, skipped notifications
//	task.*        launch and terminal outcome of execution tasks
//	async.*       failures returned to future awaiters
//	progress.*    indicator show, hide and hook panics
//	context.*     execution context teardown
//	viewmodel.*   state publisher activity and unhandled failures
//	host.*        host start and shutdown
//
// Level values align with OpenTelemetry SeverityNumbers so events
// translate to OTel log records without mapping tables.
package observability

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8), maps to slog.LevelDebug
	LevelInfo    Level = 9  // OTel INFO (9-12), maps to slog.LevelInfo
	LevelWarning Level = 13 // OTel WARN (13-16), maps to slog.LevelWarn
	LevelError   Level = 17 // OTel ERROR (17-20), maps to slog.LevelError
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps this level to the corresponding slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event. Each package defines its own
// constants using this type (e.g. "task.launch", "store.dispatch").
type EventType string

// Family returns the prefix before the first dot, "task" for
// "task.launch". A type without a dot is its own family.
func (t EventType) Family() string {
	if i := strings.IndexByte(string(t), '.'); i >= 0 {
		return string(t[:i])
	}
	return string(t)
}

// Event is an observability event. Fields map to OTel LogRecord fields:
// Type→EventName, Level→SeverityNumber, Timestamp→Timestamp,
// Source→InstrumentationScope, Data→Attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives the events of every layer. Implementations must be
// safe for concurrent use: tasks, dispatcher loops and progress timers
// emit from their own goroutines.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
