package store

import "github.com/tailored-agentic-units/statekit/observability"

const (
	EventDispatch   observability.EventType = "store.dispatch"
	EventEffect     observability.EventType = "store.effect"
	EventNotifySkip observability.EventType = "store.notify.skip"
)
