package lib

import (
	"errors"
	"time"

	"github.com/slok/hkxbatch/internal/model"
)

// EngineType selects how the converter tools are run.
type EngineType string

const (
	// EngineExec runs the real converter executables.
	EngineExec EngineType = "exec"

	// EngineFake simulates the converters, writing small output files where the
	// real tools would. Use this for testing without the Havok tools.
	EngineFake EngineType = "fake"
)

// Tool identifies a converter tool.
type Tool string

const (
	ToolHkxCmd         Tool = Tool(model.ToolHkxCmd)
	ToolHCT            Tool = Tool(model.ToolHCT)
	ToolHkxPostProcess Tool = Tool(model.ToolHkxPostProcess)
	ToolHkxC           Tool = Tool(model.ToolHkxC)
	ToolHkxConv        Tool = Tool(model.ToolHkxConv)
)

// Format is a conversion target.
type Format string

const (
	FormatXML      Format = Format(model.OutputFormatXML)
	FormatSkyrimLE Format = Format(model.OutputFormatSkyrimLE)
	FormatSkyrimSE Format = Format(model.OutputFormatSkyrimSE)
	FormatKF       Format = Format(model.OutputFormatKF)
)

// ToolInfo describes what a tool can convert.
type ToolInfo struct {
	Tool        Tool
	Label       string
	Description string
	// InputExtensions are the accepted input extensions, without dot.
	InputExtensions []string
	Formats         []FormatInfo
}

// FormatInfo describes an output format of a tool.
type FormatInfo struct {
	Format    Format
	Label     string
	Extension string
	// RequiresSkeleton is true when a skeleton file must be set to produce the format.
	RequiresSkeleton bool
}

// ConvertOpts configures a conversion batch.
//
// Inputs, Tool and Format are required. Producing [FormatKF] requires SkeletonPath.
type ConvertOpts struct {
	// Inputs are files or folders. Folders are scanned for the files the tool accepts.
	Inputs []string
	// Recursive scans the folders subdirectories.
	Recursive bool
	// OutputRoot is where the converted files are written (required).
	OutputRoot string
	// BaseFolder mirrors the input structure below it into OutputRoot. Defaults to
	// the last folder in Inputs.
	BaseFolder string
	Tool       Tool
	Format     Format
	// Suffix is appended to every output file name.
	Suffix string
	// ExtensionOverride replaces the format extension of the output files.
	ExtensionOverride string
	SkeletonPath      string
	// JobTimeout kills a converter running longer than this. Zero disables it.
	JobTimeout time.Duration
}

// EventKind is the kind of a progress event.
type EventKind string

const (
	EventQueued    EventKind = EventKind(model.EventKindQueued)
	EventRunning   EventKind = EventKind(model.EventKindRunning)
	EventSucceeded EventKind = EventKind(model.EventKindSucceeded)
	EventFailed    EventKind = EventKind(model.EventKindFailed)
	EventCancelled EventKind = EventKind(model.EventKindCancelled)
	EventCompleted EventKind = EventKind(model.EventKindCompleted)
)

// Event is a progress update of a batch. The last event of a batch is either
// [EventCompleted] or [EventCancelled].
type Event struct {
	Kind       EventKind
	File       string
	OutputPath string
	Index      int
	Total      int
	// Cause is the failure reason of failed and cancelled events.
	Cause string
	At    time.Time
}

// Outcome is the result of a finished batch.
type Outcome struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	// Cancelled batches don't count the jobs that were never started.
	Cancelled  bool
	Message    string
	Jobs       []JobOutcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// JobOutcome is the result of a single file conversion.
type JobOutcome struct {
	Index      int
	InputPath  string
	OutputPath string
	// Err is nil when the conversion succeeded. Use errors.Is with the package
	// errors to know the reason.
	Err      error
	Duration time.Duration
}

// CheckStatus is the status of a preflight check.
type CheckStatus string

const (
	CheckStatusOK      CheckStatus = CheckStatus(model.CheckStatusOK)
	CheckStatusWarning CheckStatus = CheckStatus(model.CheckStatusWarning)
	CheckStatusError   CheckStatus = CheckStatus(model.CheckStatusError)
)

// CheckResult is the result of a single preflight check.
type CheckResult struct {
	ID      string
	Message string
	Status  CheckStatus
}

// BatchRecord is a batch saved in the history.
type BatchRecord struct {
	ID         string
	Tool       Tool
	Format     Format
	OutputRoot string
	Total      int
	Succeeded  int
	Failed     int
	Cancelled  bool
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
	// Jobs are only set when getting a single batch.
	Jobs []JobRecord
}

// JobRecord is a file conversion saved in the history.
type JobRecord struct {
	Index      int
	InputPath  string
	OutputPath string
	Succeeded  bool
	Error      string
}

// HistoryOpts filters the history.
type HistoryOpts struct {
	// BatchID returns only that batch with its jobs.
	BatchID string
	// Limit is the maximum number of batches, 0 for all.
	Limit int
	// OnlyWithFailures returns only batches with failed jobs.
	OnlyWithFailures bool
}

var (
	// ErrNotFound is returned when a file, tool or batch doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when the options are rejected before anything runs.
	ErrNotValid = errors.New("not valid")
	// ErrUnsupported is returned when a tool can't do a conversion.
	ErrUnsupported = errors.New("unsupported conversion")
	// ErrToolFailed is returned when a converter exits with an error.
	ErrToolFailed = errors.New("tool execution failed")
	// ErrOutputMissing is returned when a converter succeeded without writing the output.
	ErrOutputMissing = errors.New("output missing")
	// ErrSamePath is returned when an in-place conversion would overwrite its input.
	ErrSamePath = errors.New("input and output paths are the same")
	// ErrIO is returned on filesystem failures.
	ErrIO = errors.New("io error")
	// ErrTimeout is returned when a converter exceeds the job timeout.
	ErrTimeout = errors.New("timeout")
)

var errorMapping = []struct {
	internal error
	public   error
}{
	{model.ErrNotFound, ErrNotFound},
	{model.ErrValidation, ErrNotValid},
	{model.ErrUnsupportedConversion, ErrUnsupported},
	{model.ErrToolExecutionFailed, ErrToolFailed},
	{model.ErrOutputMissing, ErrOutputMissing},
	{model.ErrSamePath, ErrSamePath},
	{model.ErrIO, ErrIO},
	{model.ErrTimeout, ErrTimeout},
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.internal) {
			return &mappedError{original: err, sentinel: m.public}
		}
	}
	return err
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }

func toolInfo(t model.ConverterTool) ToolInfo {
	info := ToolInfo{
		Tool:            Tool(t),
		Label:           t.Label(),
		Description:     t.Help(),
		InputExtensions: t.AcceptedInputExtensions(),
	}
	for _, f := range t.ProducibleOutputFormats() {
		info.Formats = append(info.Formats, FormatInfo{
			Format:           Format(f),
			Label:            f.Label(),
			Extension:        f.Extension(),
			RequiresSkeleton: f.RequiresSkeleton(),
		})
	}
	return info
}

func fromInternalEvent(ev model.ProgressEvent) Event {
	return Event{
		Kind:       EventKind(ev.Kind),
		File:       ev.File,
		OutputPath: ev.OutputPath,
		Index:      ev.Index,
		Total:      ev.Total,
		Cause:      ev.Cause,
		At:         ev.At,
	}
}

func fromInternalOutcome(o model.BatchOutcome) Outcome {
	out := Outcome{
		BatchID:    o.BatchID,
		Total:      o.Total,
		Succeeded:  o.Succeeded,
		Failed:     o.Failed,
		Cancelled:  o.Cancelled,
		Message:    o.Message,
		StartedAt:  o.StartedAt,
		FinishedAt: o.FinishedAt,
	}
	for _, j := range o.Jobs {
		out.Jobs = append(out.Jobs, JobOutcome{
			Index:      j.Index,
			InputPath:  j.InputPath,
			OutputPath: j.OutputPath,
			Err:        mapError(j.Err),
			Duration:   j.Duration,
		})
	}
	return out
}

func fromInternalCheckResults(rs []model.CheckResult) []CheckResult {
	result := make([]CheckResult, len(rs))
	for i, r := range rs {
		result[i] = CheckResult{ID: r.ID, Message: r.Message, Status: CheckStatus(r.Status)}
	}
	return result
}

func fromInternalBatchRecords(bs []model.BatchRecord) []BatchRecord {
	result := make([]BatchRecord, len(bs))
	for i, b := range bs {
		r := BatchRecord{
			ID:         b.ID,
			Tool:       Tool(b.Tool),
			Format:     Format(b.Format),
			OutputRoot: b.OutputRoot,
			Total:      b.Total,
			Succeeded:  b.Succeeded,
			Failed:     b.Failed,
			Cancelled:  b.Cancelled,
			Message:    b.Message,
			StartedAt:  b.StartedAt,
			FinishedAt: b.FinishedAt,
		}
		for _, j := range b.Jobs {
			r.Jobs = append(r.Jobs, JobRecord{
				Index:      j.Index,
				InputPath:  j.InputPath,
				OutputPath: j.OutputPath,
				Succeeded:  j.Status == model.JobStatusSucceeded,
				Error:      j.Error,
			})
		}
		result[i] = r
	}
	return result
}
