package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// DispatchEvent tracks one queued job through its lifecycle. ScopeID is the
// fixture or fantasy league the job works on.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	ScopeID      string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}
