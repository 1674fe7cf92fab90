package model

import (
	"fmt"
	"strings"
	"time"
)

// ConversionJob is one input file to output file conversion. Jobs are created by
// the batch orchestrator and are immutable for their lifetime.
type ConversionJob struct {
	// ID is unique per job, used for logging and staging file names.
	ID string
	// Index is the 0-based position of the job in its batch.
	Index int
	// Total is the number of jobs in the batch.
	Total int

	InputPath  string
	OutputPath string
	Tool       ConverterTool
	Format     OutputFormat
	// SkeletonPath is required when Format requires a skeleton or when converting
	// keyframe input back to HKX.
	SkeletonPath      string
	Suffix            string
	ExtensionOverride string
}

// BatchRequest is the set of inputs and shared settings of one run.
type BatchRequest struct {
	// Inputs are converted in this order.
	Inputs     []string
	OutputRoot string
	// BaseFolder is optional, when set the input subdirectory structure below it
	// is mirrored into OutputRoot.
	BaseFolder        string
	Tool              ConverterTool
	Format            OutputFormat
	Suffix            string
	ExtensionOverride string
	SkeletonPath      string
	// JobTimeout kills a converter that runs longer than this. Zero means no deadline.
	JobTimeout time.Duration
}

// Validate checks the batch can start. Per job problems (unsupported input extension,
// format not producible by the tool...) are not checked here, those fail only their job.
func (r BatchRequest) Validate() error {
	if len(r.Inputs) == 0 {
		return fmt.Errorf("no input files selected: %w", ErrValidation)
	}
	if r.OutputRoot == "" {
		return fmt.Errorf("no output folder selected: %w", ErrValidation)
	}
	if _, err := ParseConverterTool(string(r.Tool)); err != nil {
		return err
	}
	if _, err := ParseOutputFormat(string(r.Format)); err != nil {
		return err
	}
	if r.Format.RequiresSkeleton() && r.SkeletonPath == "" {
		return fmt.Errorf("skeleton file is required for %s conversion: %w", r.Format.Label(), ErrValidation)
	}
	if !validNamePart(r.Suffix) {
		return fmt.Errorf("suffix %q can't contain path separators: %w", r.Suffix, ErrValidation)
	}
	if !validNamePart(strings.TrimPrefix(r.ExtensionOverride, ".")) {
		return fmt.Errorf("extension %q can't contain path separators: %w", r.ExtensionOverride, ErrValidation)
	}
	if r.JobTimeout < 0 {
		return fmt.Errorf("job timeout can't be negative: %w", ErrValidation)
	}
	return nil
}

func validNamePart(s string) bool {
	return !strings.ContainsAny(s, `/\`) && s != ".."
}

// ToolPaths has the on-disk locations of the converter executables and their assets.
type ToolPaths struct {
	// Executables maps each tool to its executable path.
	Executables map[ConverterTool]string
	// Launcher is prepended to every invocation (e.g. ["wine"]). Optional.
	Launcher []string
	// SSEToLEHko is the HCT filter set file used by the SE to LE conversion.
	SSEToLEHko string
	// HCTFilterManagerDLL must live next to the HCT executable.
	HCTFilterManagerDLL string
}

// Executable returns the executable path of a tool.
func (p ToolPaths) Executable(t ConverterTool) (string, error) {
	path, ok := p.Executables[t]
	if !ok || path == "" {
		return "", fmt.Errorf("executable for %s: %w", t, ErrNotFound)
	}
	return path, nil
}
