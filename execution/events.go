package execution

import "github.com/tailored-agentic-units/statekit/observability"

const (
	EventTaskLaunch    observability.EventType = "task.launch"
	EventTaskComplete  observability.EventType = "task.complete"
	EventTaskRecovered observability.EventType = "task.recovered"
	EventTaskFail      observability.EventType = "task.fail"
	EventTaskCancel    observability.EventType = "task.cancel"
	EventTaskReject    observability.EventType = "task.reject"
	EventAsyncFail     observability.EventType = "async.fail"
	EventProgressShow  observability.EventType = "progress.show"
	EventProgressHide  observability.EventType = "progress.hide"
	EventProgressPanic observability.EventType = "progress.panic"
	EventDestroy       observability.EventType = "context.destroy"
)
