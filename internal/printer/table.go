package printer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/slok/hkxbatch/internal/model"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// TablePrinter prints conversion information for humans.
type TablePrinter struct {
	writer io.Writer
	color  bool
}

// NewTablePrinter creates a new table printer. Color uses ANSI escape codes.
func NewTablePrinter(w io.Writer, color bool) *TablePrinter {
	return &TablePrinter{writer: w, color: color}
}

func (t *TablePrinter) paint(color, s string) string {
	if !t.color {
		return s
	}
	return color + s + colorReset
}

// PrintTools prints the tools with their capabilities.
func (t *TablePrinter) PrintTools(tools []model.ConverterTool) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "TOOL\tINPUTS\tOUTPUTS\tDESCRIPTION")
	for _, tool := range tools {
		var outputs []string
		for _, f := range tool.ProducibleOutputFormats() {
			out := string(f)
			if f.RequiresSkeleton() {
				out += "*"
			}
			outputs = append(outputs, out)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			tool,
			strings.Join(tool.AcceptedInputExtensions(), ","),
			strings.Join(outputs, ","),
			tool.Help(),
		)
	}
	fmt.Fprintln(tw, "\n* requires a skeleton file")

	return nil
}

// PrintEvent prints a progress line.
func (t *TablePrinter) PrintEvent(ev model.ProgressEvent) error {
	switch ev.Kind {
	case model.EventKindCompleted:
		// The summary is printed on its own.
		return nil
	case model.EventKindCancelled:
		_, err := fmt.Fprintf(t.writer, "%s %s (%d of %d files dispatched)\n", t.paint(colorYellow, "CANCELLED"), ev.Cause, ev.Index, ev.Total)
		return err
	}

	progress := fmt.Sprintf("[%d/%d]", ev.Index+1, ev.Total)
	file := filepath.Base(ev.File)

	var err error
	switch ev.Kind {
	case model.EventKindQueued:
		_, err = fmt.Fprintf(t.writer, "%s %-9s %s -> %s\n", progress, "queued", file, ev.OutputPath)
	case model.EventKindRunning:
		_, err = fmt.Fprintf(t.writer, "%s %-9s %s\n", progress, "running", file)
	case model.EventKindSucceeded:
		_, err = fmt.Fprintf(t.writer, "%s %s %s\n", progress, t.paint(colorGreen, fmt.Sprintf("%-9s", "succeeded")), file)
	case model.EventKindFailed:
		_, err = fmt.Fprintf(t.writer, "%s %s %s: %s\n", progress, t.paint(colorRed, fmt.Sprintf("%-9s", "failed")), file, ev.Cause)
	default:
		_, err = fmt.Fprintf(t.writer, "%s %-9s %s\n", progress, ev.Kind, file)
	}
	return err
}

// PrintSummary prints the batch outcome.
func (t *TablePrinter) PrintSummary(o model.BatchOutcome) error {
	color := colorGreen
	switch {
	case o.Cancelled:
		color = colorYellow
	case o.Failed > 0:
		color = colorRed
	}

	fmt.Fprintln(t.writer)
	fmt.Fprintln(t.writer, t.paint(color, o.Message))
	fmt.Fprintf(t.writer, "Batch:      %s\n", o.BatchID)
	fmt.Fprintf(t.writer, "Succeeded:  %d\n", o.Succeeded)
	fmt.Fprintf(t.writer, "Failed:     %d\n", o.Failed)
	if o.Cancelled {
		fmt.Fprintf(t.writer, "Skipped:    %d\n", o.Total-o.Succeeded-o.Failed)
	}
	fmt.Fprintf(t.writer, "Duration:   %s\n", FormatDuration(o.FinishedAt.Sub(o.StartedAt)))

	for _, j := range o.Jobs {
		if j.Err != nil {
			fmt.Fprintf(t.writer, "  %s %s: %s\n", t.paint(colorRed, "XX"), j.InputPath, j.Err)
		}
	}

	return nil
}

// PrintChecks prints the preflight check results with a summary.
func (t *TablePrinter) PrintChecks(results []model.CheckResult) error {
	for _, r := range results {
		fmt.Fprintf(t.writer, "  %s %-26s %s\n", t.statusIcon(r.Status), r.ID, r.Message)
	}

	fmt.Fprintln(t.writer)
	sum := model.SummarizeChecks(results)
	if sum.Errors == 0 && sum.Warnings == 0 {
		fmt.Fprintln(t.writer, "All checks passed!")
		return nil
	}

	var summary []string
	if sum.Errors > 0 {
		summary = append(summary, fmt.Sprintf("%d error(s)", sum.Errors))
	}
	if sum.Warnings > 0 {
		summary = append(summary, fmt.Sprintf("%d warning(s)", sum.Warnings))
	}
	fmt.Fprintln(t.writer, strings.Join(summary, ", "))

	return nil
}

func (t *TablePrinter) statusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return t.paint(colorGreen, "OK")
	case model.CheckStatusWarning:
		return t.paint(colorYellow, "!!")
	case model.CheckStatusError:
		return t.paint(colorRed, "XX")
	default:
		return "??"
	}
}

// PrintHistory prints batches in a table format.
func (t *TablePrinter) PrintHistory(batches []model.BatchRecord) error {
	if len(batches) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTOOL\tFORMAT\tFILES\tOK\tFAILED\tSTATUS\tSTARTED")
	for _, b := range batches {
		status := "completed"
		if b.Cancelled {
			status = "cancelled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			b.ID,
			b.Tool,
			b.Format,
			b.Total,
			b.Succeeded,
			b.Failed,
			status,
			TimeAgo(b.StartedAt),
		)
	}

	return nil
}

// PrintBatch prints a batch with its jobs.
func (t *TablePrinter) PrintBatch(b model.BatchRecord) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", b.ID)
	fmt.Fprintf(t.writer, "Tool:       %s\n", b.Tool.Label())
	fmt.Fprintf(t.writer, "Format:     %s\n", b.Format.Label())
	fmt.Fprintf(t.writer, "Output:     %s\n", b.OutputRoot)
	fmt.Fprintf(t.writer, "Result:     %s\n", b.Message)
	fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(b.StartedAt))
	fmt.Fprintf(t.writer, "Duration:   %s\n", FormatDuration(b.FinishedAt.Sub(b.StartedAt)))

	if len(b.Jobs) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "#\tSTATUS\tINPUT\tOUTPUT\tERROR")
	for _, j := range b.Jobs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", j.Index+1, j.Status, j.InputPath, j.OutputPath, j.Error)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
