// Package process runs the external converter programs.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
)

// Command is an external program invocation.
type Command struct {
	// Path is the executable path.
	Path string
	// Args are the arguments, without the executable.
	Args []string
	// Dir is the working directory, empty uses the current one.
	Dir string
}

// Result is the outcome of a process that could be started and waited.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner runs external processes. A non zero exit code is not an error, it is
// returned in the Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

//go:generate mockery --case underscore --output processmock --outpkg processmock --name Runner

// RunnerFunc is a helper to implement Runner with a function.
type RunnerFunc func(ctx context.Context, cmd Command) (*Result, error)

// Run satisfies Runner interface.
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (*Result, error) { return f(ctx, cmd) }

// ExecRunnerConfig is the configuration of the os/exec runner.
type ExecRunnerConfig struct {
	// Launcher is prepended to every command (e.g. ["wine"]). Optional.
	Launcher []string
	Logger   log.Logger
}

func (c *ExecRunnerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "process.ExecRunner"})
	return nil
}

// ExecRunner runs processes with os/exec, capturing stdout and stderr.
type ExecRunner struct {
	launcher []string
	logger   log.Logger
}

// NewExecRunner returns a new os/exec based runner.
func NewExecRunner(cfg ExecRunnerConfig) (*ExecRunner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &ExecRunner{
		launcher: cfg.Launcher,
		logger:   cfg.Logger,
	}, nil
}

// waitDelay bounds how long Run waits for the output pipes once the process is killed.
const waitDelay = 500 * time.Millisecond

// Run runs the command and waits for it. When ctx deadline is exceeded the process
// and its children are killed and model.ErrTimeout returned.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Path == "" {
		return nil, fmt.Errorf("executable path is required: %w", model.ErrValidation)
	}

	name := cmd.Path
	args := cmd.Args
	if len(r.launcher) > 0 {
		name = r.launcher[0]
		args = append(append(append([]string{}, r.launcher[1:]...), cmd.Path), cmd.Args...)
	}

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = cmd.Dir
	killProcessGroup(c)
	c.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	r.logger.Debugf("Executing %s %q (dir: %q)", name, args, cmd.Dir)

	err := c.Run()
	res := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s killed after deadline: %w", cmd.Path, model.ErrTimeout)
		}
		return nil, fmt.Errorf("%s interrupted: %w", cmd.Path, ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("could not execute %s: %w", cmd.Path, err)
	}

	return res, nil
}
