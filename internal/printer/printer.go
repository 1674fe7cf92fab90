package printer

import "github.com/slok/hkxbatch/internal/model"

// Printer knows how to print conversion information in different formats.
type Printer interface {
	PrintTools(tools []model.ConverterTool) error
	PrintEvent(ev model.ProgressEvent) error
	PrintSummary(outcome model.BatchOutcome) error
	PrintChecks(results []model.CheckResult) error
	PrintHistory(batches []model.BatchRecord) error
	PrintBatch(batch model.BatchRecord) error
	PrintMessage(msg string) error
}
