package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
)

// ServiceConfig is the configuration for the doctor service.
type ServiceConfig struct {
	Paths model.ToolPaths
	// TempDir is where HCT working directories are created. Defaults to the OS one.
	TempDir string
	// LookPath finds the launcher executable. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	// GOOS defaults to the running OS.
	GOOS   string
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}
	if c.GOOS == "" {
		c.GOOS = runtime.GOOS
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Doctor"})
	return nil
}

// Service runs the preflight checks of the converter tools.
type Service struct {
	cfg    ServiceConfig
	logger log.Logger
}

// NewService creates a new doctor service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{cfg: cfg, logger: cfg.Logger}, nil
}

// Request is the doctor request.
type Request struct {
	// Tools to check. Empty checks all of them, and then a missing tool is only a
	// warning because it may never be used.
	Tools []model.ConverterTool
}

// Run runs the checks. Problems are results, not errors.
func (s *Service) Run(ctx context.Context, req Request) ([]model.CheckResult, error) {
	tools := req.Tools
	missingStatus := model.CheckStatusError
	if len(tools) == 0 {
		tools = model.Tools()
		missingStatus = model.CheckStatusWarning
	}

	var results []model.CheckResult
	for _, t := range tools {
		if _, err := model.ParseConverterTool(string(t)); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results = append(results, s.checkExecutable(t, missingStatus))
		if t == model.ToolHCT {
			results = append(results,
				s.checkFile("hct_filter_set", "HCT filter set", s.cfg.Paths.SSEToLEHko, missingStatus),
				s.checkFile("hct_filter_manager_dll", "HCT filter manager DLL", s.cfg.Paths.HCTFilterManagerDLL, missingStatus),
			)
		}
	}

	results = append(results, s.checkLauncher(), s.checkTempDir())

	sum := model.SummarizeChecks(results)
	s.logger.Debugf("Checks done: %d ok, %d warnings, %d errors", sum.OK, sum.Warnings, sum.Errors)

	return results, nil
}

func (s *Service) checkExecutable(t model.ConverterTool, missingStatus model.CheckStatus) model.CheckResult {
	path, err := s.cfg.Paths.Executable(t)
	if err != nil {
		return model.CheckResult{
			ID:      string(t) + "_executable",
			Message: fmt.Sprintf("%s executable is not configured", t.Label()),
			Status:  missingStatus,
		}
	}
	return s.checkFile(string(t)+"_executable", t.Label()+" executable", path, missingStatus)
}

func (s *Service) checkFile(id, name, path string, missingStatus model.CheckStatus) model.CheckResult {
	if path == "" {
		return model.CheckResult{
			ID:      id,
			Message: fmt.Sprintf("%s path is not configured", name),
			Status:  missingStatus,
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return model.CheckResult{
			ID:      id,
			Message: fmt.Sprintf("%s not found at %s", name, path),
			Status:  missingStatus,
		}
	}
	if !info.Mode().IsRegular() {
		return model.CheckResult{
			ID:      id,
			Message: fmt.Sprintf("%s at %s is not a file", name, path),
			Status:  model.CheckStatusError,
		}
	}

	return model.CheckResult{
		ID:      id,
		Message: fmt.Sprintf("%s found at %s", name, path),
		Status:  model.CheckStatusOK,
	}
}

// checkLauncher checks the launcher is available. The converters are Windows
// programs, other systems normally need one.
func (s *Service) checkLauncher() model.CheckResult {
	launcher := s.cfg.Paths.Launcher
	if len(launcher) == 0 {
		if s.cfg.GOOS == "windows" {
			return model.CheckResult{
				ID:      "launcher",
				Message: "No launcher required on Windows",
				Status:  model.CheckStatusOK,
			}
		}
		return model.CheckResult{
			ID:      "launcher",
			Message: fmt.Sprintf("No launcher configured, the converters are Windows programs and may need one on %s (e.g. wine)", s.cfg.GOOS),
			Status:  model.CheckStatusWarning,
		}
	}

	path, err := s.cfg.LookPath(launcher[0])
	if err != nil {
		return model.CheckResult{
			ID:      "launcher",
			Message: fmt.Sprintf("Launcher %q not found: %v", launcher[0], err),
			Status:  model.CheckStatusError,
		}
	}

	return model.CheckResult{
		ID:      "launcher",
		Message: fmt.Sprintf("Launcher found at %s", path),
		Status:  model.CheckStatusOK,
	}
}

// checkTempDir checks isolated working directories can be created.
func (s *Service) checkTempDir() model.CheckResult {
	dir, err := os.MkdirTemp(s.cfg.TempDir, "hkxbatch-doctor-*")
	if err != nil {
		return model.CheckResult{
			ID:      "temp_dir",
			Message: fmt.Sprintf("Cannot create directories in %s: %v", s.cfg.TempDir, err),
			Status:  model.CheckStatusError,
		}
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warningf("Could not remove %q: %s", dir, err)
	}

	return model.CheckResult{
		ID:      "temp_dir",
		Message: fmt.Sprintf("Temporary directory %s is writable", s.cfg.TempDir),
		Status:  model.CheckStatusOK,
	}
}
