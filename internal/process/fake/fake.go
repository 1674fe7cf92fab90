// Package fake has a process runner that simulates the converter tools without
// running anything. It understands the argument vectors of every supported tool
// and writes a small output file where the real tool would.
package fake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/process"
)

// RunnerConfig is the configuration for the fake runner.
type RunnerConfig struct {
	// ExitCode returned by every invocation. Non zero doesn't write outputs.
	ExitCode int
	// SkipOutput makes successful invocations not write any output.
	SkipOutput bool
	// KeepSize makes in-place conversions not change the file size.
	KeepSize bool
	// Delay simulates slow conversions, honoring context cancellation.
	Delay  time.Duration
	Logger log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "process.Fake"})
	return nil
}

// Runner is a fake implementation of process.Runner.
type Runner struct {
	cfg      RunnerConfig
	commands []process.Command
	mu       sync.Mutex
	logger   log.Logger
}

// NewRunner creates a new fake runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		cfg:    cfg,
		logger: cfg.Logger,
	}, nil
}

// Commands returns the commands received so far.
func (r *Runner) Commands() []process.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.commands)
}

// Run simulates the command.
func (r *Runner) Run(ctx context.Context, cmd process.Command) (*process.Result, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if r.cfg.Delay > 0 {
		select {
		case <-time.After(r.cfg.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if r.cfg.ExitCode != 0 {
		return &process.Result{
			ExitCode: r.cfg.ExitCode,
			Stdout:   "fake stdout",
			Stderr:   "fake conversion error",
		}, nil
	}

	if !r.cfg.SkipOutput {
		if err := r.writeOutput(cmd); err != nil {
			return &process.Result{ExitCode: 1, Stderr: err.Error()}, nil
		}
	}

	r.logger.Debugf("Simulated %s %q", filepath.Base(cmd.Path), cmd.Args)
	return &process.Result{Stdout: "ok"}, nil
}

func (r *Runner) writeOutput(cmd process.Command) error {
	args := cmd.Args

	// HavokBehaviorPostProcess: --platformAmd64 <file> <file>.
	if i := slices.Index(args, "--platformAmd64"); i >= 0 && len(args) > i+1 {
		if r.cfg.KeepSize {
			return nil
		}
		f, err := os.OpenFile(args[i+1], os.O_APPEND|os.O_WRONLY, 0)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.WriteString("-amd64")
		return err
	}

	// HCT: <in> -s <hko>, writes the fixed name on the working directory.
	if slices.Contains(args, "-s") {
		hko := args[slices.Index(args, "-s")+1]
		if _, err := os.Stat(filepath.Join(cmd.Dir, hko)); err != nil {
			return fmt.Errorf("filter set %q not found on working directory: %w", hko, err)
		}
		return os.WriteFile(filepath.Join(cmd.Dir, conventions.HCTOutputFile), []byte("le"), 0o644)
	}

	var out string
	switch {
	case slices.Contains(args, "-o"): // hkxcmd.
		out = args[slices.Index(args, "-o")+1]
	case slices.Contains(args, "--output"): // hkxc.
		out = args[slices.Index(args, "--output")+1]
	case len(args) > 3 && (args[0] == "exportkf" || args[0] == "ConvertKF"): // hkxcmd KF.
		out = args[3]
	case len(args) > 2 && args[0] == "convert": // hkxconv.
		out = args[2]
	default:
		return fmt.Errorf("unknown invocation %q", args)
	}

	return os.WriteFile(out, []byte("converted"), 0o644)
}
