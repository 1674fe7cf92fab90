// Package converter runs a single conversion job with the external tool selected
// for the batch. Every tool family has its own strategy (argument driven, fixed
// output name, in-place mutation), picked once when the converter is created.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/process"
	"github.com/slok/hkxbatch/internal/utils/file"
)

// Converter converts one job. On success the output file exists at the job output
// path, on failure no partial file is left there.
type Converter interface {
	Convert(ctx context.Context, job model.ConversionJob) error
}

// ConverterFunc is a helper to implement Converter with a function.
type ConverterFunc func(ctx context.Context, job model.ConversionJob) error

// Convert satisfies Converter interface.
func (f ConverterFunc) Convert(ctx context.Context, job model.ConversionJob) error { return f(ctx, job) }

// Config is the configuration of a tool converter.
type Config struct {
	// Tool is the converter tool used for every job. Required.
	Tool model.ConverterTool
	// Paths are the tool executables and assets. Required.
	Paths model.ToolPaths
	// Runner runs the external processes. Required.
	Runner process.Runner
	// TempDir is where isolated working directories are created. Defaults to the
	// OS temporary directory.
	TempDir string
	Logger  log.Logger
}

func (c *Config) defaults() error {
	if _, err := model.ParseConverterTool(string(c.Tool)); err != nil {
		return err
	}
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "converter.Task", "tool": c.Tool})
	return nil
}

// strategy is the tool specific part of a conversion. Paths on the job are
// absolute and the job has been checked against the tool capabilities.
type strategy interface {
	convert(ctx context.Context, job model.ConversionJob) error
}

// Task is the Converter for a tool.
type Task struct {
	tool     model.ConverterTool
	strategy strategy
	logger   log.Logger
}

// New returns the converter of the configured tool.
func New(cfg Config) (*Task, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	exe, err := cfg.Paths.Executable(cfg.Tool)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	exe, err = filepath.Abs(exe)
	if err != nil {
		return nil, fmt.Errorf("could not make executable path absolute: %w", err)
	}

	r := toolRunner{tool: cfg.Tool, exe: exe, runner: cfg.Runner, logger: cfg.Logger}

	var s strategy
	switch cfg.Tool {
	case model.ToolHkxCmd:
		s = stagedStrategy{run: r, args: hkxcmdArgs, logger: cfg.Logger}
	case model.ToolHkxC:
		s = stagedStrategy{run: r, args: hkxcArgs, logger: cfg.Logger}
	case model.ToolHkxConv:
		s = stagedStrategy{run: r, args: hkxconvArgs, logger: cfg.Logger}
	case model.ToolHCT:
		if cfg.Paths.SSEToLEHko == "" {
			return nil, fmt.Errorf("invalid config: hct filter set path is required")
		}
		s = fixedOutputStrategy{run: r, filterSet: cfg.Paths.SSEToLEHko, tempDir: cfg.TempDir, logger: cfg.Logger}
	case model.ToolHkxPostProcess:
		s = inPlaceStrategy{run: r, logger: cfg.Logger}
	default:
		return nil, fmt.Errorf("tool %s: %w", cfg.Tool, model.ErrUnsupportedConversion)
	}

	return &Task{
		tool:     cfg.Tool,
		strategy: s,
		logger:   cfg.Logger,
	}, nil
}

// Convert validates the job against the tool capabilities, runs the tool and
// checks the output exists. Jobs that can't be done by the tool are rejected
// without running any process.
func (t *Task) Convert(ctx context.Context, job model.ConversionJob) error {
	if job.Tool != "" && job.Tool != t.tool {
		return fmt.Errorf("job for %s sent to %s converter: %w", job.Tool, t.tool, model.ErrValidation)
	}
	if !t.tool.Produces(job.Format) {
		return fmt.Errorf("%s can't produce %s: %w", t.tool.Label(), job.Format.Label(), model.ErrUnsupportedConversion)
	}
	if !t.tool.Accepts(job.InputPath) {
		return fmt.Errorf("%s doesn't accept %q input files: %w", t.tool.Label(), filepath.Ext(job.InputPath), model.ErrUnsupportedConversion)
	}
	if job.Format.RequiresSkeleton() && job.SkeletonPath == "" {
		return fmt.Errorf("skeleton file is required for %s output: %w", job.Format.Label(), model.ErrValidation)
	}
	if !file.IsRegularFile(job.InputPath) {
		return fmt.Errorf("input %q is not a file: %w", job.InputPath, model.ErrValidation)
	}

	// Absolute paths avoid tools taking file names starting with '-' as flags.
	var err error
	if job.InputPath, err = filepath.Abs(job.InputPath); err != nil {
		return ioError("could not make input path absolute", err)
	}
	if job.OutputPath, err = filepath.Abs(job.OutputPath); err != nil {
		return ioError("could not make output path absolute", err)
	}
	if job.SkeletonPath != "" {
		if job.SkeletonPath, err = filepath.Abs(job.SkeletonPath); err != nil {
			return ioError("could not make skeleton path absolute", err)
		}
	}

	logger := t.logger.WithValues(log.Kv{"job": job.ID})
	logger.Debugf("Converting %q to %q", job.InputPath, job.OutputPath)

	if err := t.strategy.convert(ctx, job); err != nil {
		return err
	}

	// A zero exit code is not proof of a conversion.
	if !file.NonEmptyFile(job.OutputPath) {
		return fmt.Errorf("output file was not created at %q: %w", job.OutputPath, model.ErrOutputMissing)
	}

	logger.Debugf("Converted %q", job.OutputPath)
	return nil
}

// toolRunner runs the tool executable and translates the process outcome into the
// conversion errors.
type toolRunner struct {
	tool   model.ConverterTool
	exe    string
	runner process.Runner
	logger log.Logger
}

func (r toolRunner) run(ctx context.Context, args []string, dir string) error {
	res, err := r.runner.Run(ctx, process.Command{Path: r.exe, Args: args, Dir: dir})
	if err != nil {
		if errors.Is(err, model.ErrTimeout) {
			return err
		}
		return fmt.Errorf("could not run %s: %w: %w", r.tool.Label(), model.ErrToolExecutionFailed, err)
	}

	if res.ExitCode != 0 {
		return &model.ToolExecutionError{
			Tool:     r.tool.Label(),
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}

	return nil
}

// stagingPath returns the in-progress path of an output, next to it so the final
// rename doesn't cross filesystems. The extension is kept, tools may use it.
func stagingPath(out, jobID string) string {
	if jobID == "" {
		jobID = "job"
	}
	return filepath.Join(filepath.Dir(out), conventions.StagingFilePrefix+jobID+"-"+filepath.Base(out))
}

func removeStaging(logger log.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warningf("Could not remove staging file %q: %s", path, err)
	}
}

func ioError(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, model.ErrIO, err)
}
