package model

import "time"

// EventKind is the kind of a progress event.
type EventKind string

const (
	EventKindQueued    EventKind = "queued"
	EventKindRunning   EventKind = "running"
	EventKindSucceeded EventKind = "succeeded"
	EventKindFailed    EventKind = "failed"
	EventKindCancelled EventKind = "cancelled"
	// EventKindCompleted is the terminal event of a batch that was not cancelled,
	// it carries the BatchOutcome.
	EventKindCompleted EventKind = "completed"
)

// ProgressEvent is a transient status update of a batch.
type ProgressEvent struct {
	Kind EventKind
	// File is the originating input file. Empty on batch level events.
	// Cancelled events carry the index of the first job that was not dispatched.
	File       string
	OutputPath string
	Index      int
	Total      int
	// Cause is the human readable failure reason (failed and cancelled events).
	Cause string
	// Err is the failure error (failed events).
	Err error
	// Outcome is only set on completed events.
	Outcome *BatchOutcome
	At      time.Time
}

// Terminal returns true if the event closes the batch stream.
func (e ProgressEvent) Terminal() bool {
	return e.Kind == EventKindCompleted || e.Kind == EventKindCancelled
}

// JobOutcome is the final result of a single job.
type JobOutcome struct {
	Index      int
	InputPath  string
	OutputPath string
	// Err is nil when the job succeeded.
	Err error
	// Duration is how long the converter took.
	Duration time.Duration
}

// BatchOutcome is the final tally of a batch.
type BatchOutcome struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	// Cancelled is true when the user cancelled the batch. Jobs that were
	// never dispatched are not counted as failed.
	Cancelled  bool
	Message    string
	Jobs       []JobOutcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// BatchState is the state of the orchestrator for a batch.
type BatchState string

const (
	BatchStateIdle      BatchState = "idle"
	BatchStateRunning   BatchState = "running"
	BatchStateCompleted BatchState = "completed"
	BatchStateFailed    BatchState = "failed"
	BatchStateCancelled BatchState = "cancelled"
)

// BatchRecord is a finished batch as stored in the history.
type BatchRecord struct {
	ID         string
	Tool       ConverterTool
	Format     OutputFormat
	OutputRoot string
	Total      int
	Succeeded  int
	Failed     int
	Cancelled  bool
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
	Jobs       []JobRecord
}

// JobStatus is the final status of a job in the history.
type JobStatus string

const (
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JobRecord is a finished job as stored in the history.
type JobRecord struct {
	Index      int
	InputPath  string
	OutputPath string
	Status     JobStatus
	Error      string
}

// NewBatchRecord builds the history record of a finished batch.
func NewBatchRecord(req BatchRequest, o BatchOutcome) BatchRecord {
	r := BatchRecord{
		ID:         o.BatchID,
		Tool:       req.Tool,
		Format:     req.Format,
		OutputRoot: req.OutputRoot,
		Total:      o.Total,
		Succeeded:  o.Succeeded,
		Failed:     o.Failed,
		Cancelled:  o.Cancelled,
		Message:    o.Message,
		StartedAt:  o.StartedAt,
		FinishedAt: o.FinishedAt,
	}
	for _, j := range o.Jobs {
		jr := JobRecord{
			Index:      j.Index,
			InputPath:  j.InputPath,
			OutputPath: j.OutputPath,
			Status:     JobStatusSucceeded,
		}
		if j.Err != nil {
			jr.Status = JobStatusFailed
			jr.Error = j.Err.Error()
		}
		r.Jobs = append(r.Jobs, jr)
	}
	return r
}
