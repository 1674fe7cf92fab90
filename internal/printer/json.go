package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/hkxbatch/internal/model"
)

// JSONPrinter prints conversion information in JSON format. Progress events are
// printed one per line so they can be streamed.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type toolOutput struct {
	Name            string         `json:"name"`
	Label           string         `json:"label"`
	Description     string         `json:"description"`
	InputExtensions []string       `json:"input_extensions"`
	OutputFormats   []formatOutput `json:"output_formats"`
}

type formatOutput struct {
	Name             string `json:"name"`
	Extension        string `json:"extension"`
	RequiresSkeleton bool   `json:"requires_skeleton"`
}

type eventOutput struct {
	Kind       string    `json:"kind"`
	File       string    `json:"file,omitempty"`
	OutputPath string    `json:"output_path,omitempty"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	Cause      string    `json:"cause,omitempty"`
	At         time.Time `json:"at"`
}

type jobOutput struct {
	Index      int    `json:"index"`
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

type summaryOutput struct {
	BatchID    string      `json:"batch_id"`
	Total      int         `json:"total"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	Cancelled  bool        `json:"cancelled"`
	Message    string      `json:"message"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Jobs       []jobOutput `json:"jobs,omitempty"`
}

type checkOutput struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type checksOutput struct {
	Checks   []checkOutput `json:"checks"`
	OK       int           `json:"ok"`
	Warnings int           `json:"warnings"`
	Errors   int           `json:"errors"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// PrintTools prints the tools with their capabilities.
func (j *JSONPrinter) PrintTools(tools []model.ConverterTool) error {
	items := make([]toolOutput, 0, len(tools))
	for _, t := range tools {
		item := toolOutput{
			Name:            string(t),
			Label:           t.Label(),
			Description:     t.Help(),
			InputExtensions: t.AcceptedInputExtensions(),
		}
		for _, f := range t.ProducibleOutputFormats() {
			item.OutputFormats = append(item.OutputFormats, formatOutput{
				Name:             string(f),
				Extension:        f.Extension(),
				RequiresSkeleton: f.RequiresSkeleton(),
			})
		}
		items = append(items, item)
	}

	return j.encode(items)
}

// PrintEvent prints a progress event as a single JSON line. Completed events
// are skipped, the summary carries the same information.
func (j *JSONPrinter) PrintEvent(ev model.ProgressEvent) error {
	if ev.Kind == model.EventKindCompleted {
		return nil
	}

	return json.NewEncoder(j.writer).Encode(eventOutput{
		Kind:       string(ev.Kind),
		File:       ev.File,
		OutputPath: ev.OutputPath,
		Index:      ev.Index,
		Total:      ev.Total,
		Cause:      ev.Cause,
		At:         ev.At.UTC(),
	})
}

// PrintSummary prints the batch outcome.
func (j *JSONPrinter) PrintSummary(o model.BatchOutcome) error {
	output := summaryOutput{
		BatchID:    o.BatchID,
		Total:      o.Total,
		Succeeded:  o.Succeeded,
		Failed:     o.Failed,
		Cancelled:  o.Cancelled,
		Message:    o.Message,
		StartedAt:  o.StartedAt.UTC(),
		FinishedAt: o.FinishedAt.UTC(),
	}
	for _, jo := range o.Jobs {
		item := jobOutput{
			Index:      jo.Index,
			InputPath:  jo.InputPath,
			OutputPath: jo.OutputPath,
			Status:     string(model.JobStatusSucceeded),
			DurationMS: jo.Duration.Milliseconds(),
		}
		if jo.Err != nil {
			item.Status = string(model.JobStatusFailed)
			item.Error = jo.Err.Error()
		}
		output.Jobs = append(output.Jobs, item)
	}

	return json.NewEncoder(j.writer).Encode(output)
}

// PrintChecks prints the preflight check results with their counts.
func (j *JSONPrinter) PrintChecks(results []model.CheckResult) error {
	output := checksOutput{Checks: make([]checkOutput, 0, len(results))}
	for _, r := range results {
		output.Checks = append(output.Checks, checkOutput{ID: r.ID, Status: string(r.Status), Message: r.Message})
	}
	sum := model.SummarizeChecks(results)
	output.OK, output.Warnings, output.Errors = sum.OK, sum.Warnings, sum.Errors

	return j.encode(output)
}

// PrintHistory prints batches without their jobs.
func (j *JSONPrinter) PrintHistory(batches []model.BatchRecord) error {
	items := make([]summaryOutput, 0, len(batches))
	for _, b := range batches {
		items = append(items, batchToOutput(b))
	}

	return j.encode(items)
}

// PrintBatch prints a batch with its jobs.
func (j *JSONPrinter) PrintBatch(b model.BatchRecord) error {
	return j.encode(batchToOutput(b))
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func batchToOutput(b model.BatchRecord) summaryOutput {
	output := summaryOutput{
		BatchID:    b.ID,
		Total:      b.Total,
		Succeeded:  b.Succeeded,
		Failed:     b.Failed,
		Cancelled:  b.Cancelled,
		Message:    b.Message,
		StartedAt:  b.StartedAt.UTC(),
		FinishedAt: b.FinishedAt.UTC(),
	}
	for _, jr := range b.Jobs {
		output.Jobs = append(output.Jobs, jobOutput{
			Index:      jr.Index,
			InputPath:  jr.InputPath,
			OutputPath: jr.OutputPath,
			Status:     string(jr.Status),
			Error:      jr.Error,
		})
	}
	return output
}
