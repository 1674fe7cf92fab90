package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when a batch or job is rejected before any work starts.
	ErrValidation = errors.New("not valid")
	// ErrUnsupportedConversion is returned when a tool can't do the requested conversion.
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	// ErrToolExecutionFailed is returned when the external converter exits with non zero code.
	ErrToolExecutionFailed = errors.New("tool execution failed")
	// ErrOutputMissing is returned when the converter reported success but no output exists.
	ErrOutputMissing = errors.New("output missing")
	// ErrSamePath is returned when an in-place converter would overwrite its own input.
	ErrSamePath = errors.New("input and output paths are the same")
	// ErrIO is returned on filesystem failures (directory creation, copy, move, cleanup).
	ErrIO = errors.New("io error")
	// ErrTimeout is returned when a converter exceeds the job deadline.
	ErrTimeout = errors.New("timeout")
)

// ToolExecutionError has the diagnostics of a failed converter process.
type ToolExecutionError struct {
	Tool     string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d: stdout: %s stderr: %s",
		e.Tool, e.ExitCode, strings.TrimSpace(e.Stdout), strings.TrimSpace(e.Stderr))
}

// Is makes the error match ErrToolExecutionFailed.
func (e *ToolExecutionError) Is(target error) bool { return target == ErrToolExecutionFailed }
