package dispatchers

import "github.com/tailored-agentic-units/statekit/observability"

const (
	EventDispatcherStart observability.EventType = "dispatcher.start"
	EventDispatcherStop  observability.EventType = "dispatcher.stop"
	EventDispatcherPanic observability.EventType = "dispatcher.panic"
)
