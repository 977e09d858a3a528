package observability

import "context"

// NoOpObserver discards all events. Resolve returns it for the "noop"
// name and for an empty name, so a context or host configured without
// an observer stays silent.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}
