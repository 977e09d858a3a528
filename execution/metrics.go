package execution

import "sync/atomic"

// MetricsSnapshot is a point-in-time copy of a context's task counters.
type MetricsSnapshot struct {
	Launched  int64
	Active    int64
	Completed int64
	Recovered int64
	Failed    int64
	Cancelled int64
	Rejected  int64
}

// Metrics counts task lifecycle transitions for one context.
type Metrics struct {
	launched  atomic.Int64
	active    atomic.Int64
	completed atomic.Int64
	recovered atomic.Int64
	failed    atomic.Int64
	cancelled atomic.Int64
	rejected  atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordLaunch() {
	m.launched.Add(1)
	m.active.Add(1)
}

// RecordOutcome records the terminal status of a launched task.
func (m *Metrics) RecordOutcome(s Status) {
	m.active.Add(-1)
	switch s {
	case StatusCompleted:
		m.completed.Add(1)
	case StatusRecovered:
		m.recovered.Add(1)
	case StatusFailed:
		m.failed.Add(1)
	case StatusCancelled:
		m.cancelled.Add(1)
	}
}

func (m *Metrics) RecordReject() {
	m.rejected.Add(1)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Launched:  m.launched.Load(),
		Active:    m.active.Load(),
		Completed: m.completed.Load(),
		Recovered: m.recovered.Load(),
		Failed:    m.failed.Load(),
		Cancelled: m.cancelled.Load(),
		Rejected:  m.rejected.Load(),
	}
}
