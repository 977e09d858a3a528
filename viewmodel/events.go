package viewmodel

import "github.com/tailored-agentic-units/statekit/observability"

const (
	EventFire          observability.EventType = "viewmodel.fire"
	EventFireEffect    observability.EventType = "viewmodel.fire_effect"
	EventOneTimeAction observability.EventType = "viewmodel.one_time_action"
	EventException     observability.EventType = "viewmodel.exception"
	EventUnhandled     observability.EventType = "viewmodel.unhandled"
	EventClose         observability.EventType = "viewmodel.close"
)
