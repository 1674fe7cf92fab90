package model

// CheckStatus is the status of a preflight check.
type CheckStatus string

const (
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning is a problem that only breaks some conversions, or a tool
	// that was not explicitly selected.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError means the selected conversions can't run.
	CheckStatusError CheckStatus = "error"
)

// CheckResult is the result of a preflight check over a tool, an asset or the host.
type CheckResult struct {
	// ID names what was checked, e.g. "hkxc_executable" or "temp_dir".
	ID      string
	Message string
	Status  CheckStatus
}

// CheckSummary counts check results by status.
type CheckSummary struct {
	OK       int
	Warnings int
	Errors   int
}

// Passed returns true when no check failed. Warnings don't fail.
func (s CheckSummary) Passed() bool { return s.Errors == 0 }

// SummarizeChecks counts the results by status.
func SummarizeChecks(results []CheckResult) CheckSummary {
	var s CheckSummary
	for _, r := range results {
		switch r.Status {
		case CheckStatusOK:
			s.OK++
		case CheckStatusWarning:
			s.Warnings++
		case CheckStatusError:
			s.Errors++
		}
	}
	return s
}
