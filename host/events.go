package host

import "github.com/tailored-agentic-units/statekit/observability"

const (
	EventStart    observability.EventType = "host.start"
	EventShutdown observability.EventType = "host.shutdown"
)
