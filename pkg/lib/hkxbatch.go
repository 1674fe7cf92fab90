package lib

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/slok/hkxbatch/internal/app/convert"
	"github.com/slok/hkxbatch/internal/app/doctor"
	"github.com/slok/hkxbatch/internal/app/history"
	"github.com/slok/hkxbatch/internal/app/ingest"
	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/internal/converter"
	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/process"
	"github.com/slok/hkxbatch/internal/process/fake"
	"github.com/slok/hkxbatch/internal/storage"
	iostorage "github.com/slok/hkxbatch/internal/storage/io"
	"github.com/slok/hkxbatch/internal/storage/sqlite"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} expects the tools in ~/.hkxbatch/tools,
// loads ~/.hkxbatch/config.yaml when present and doesn't keep any history.
type Config struct {
	// DataDir is the base directory for the tools and the configuration.
	// Default: ~/.hkxbatch.
	DataDir string

	// ConfigPath is the tools configuration YAML file. When set, it must exist.
	// Default: config.yaml inside DataDir, if present.
	ConfigPath string

	// HistoryDBPath is the SQLite database where finished batches are saved.
	// Default: empty, no history is kept.
	HistoryDBPath string

	// Engine selects how the tools are run.
	// Default: [EngineExec].
	Engine EngineType

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, conventions.DefaultDataDir)
	}

	if c.Engine == "" {
		c.Engine = EngineExec
	}
	if c.Engine != EngineExec && c.Engine != EngineFake {
		return fmt.Errorf("unsupported engine type: %s: %w", c.Engine, ErrNotValid)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point for converting files programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client runs one batch at a time.
type Client struct {
	paths   model.ToolPaths
	runner  process.Runner
	history storage.HistoryRepository
	convert *convert.Service
	ingest  *ingest.Service
	logger  log.Logger
	closeFn func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the history database.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, mapError(fmt.Errorf("invalid config: %w", err))
	}

	paths, err := loadToolPaths(ctx, cfg)
	if err != nil {
		return nil, mapError(err)
	}

	var runner process.Runner
	switch cfg.Engine {
	case EngineFake:
		runner, err = fake.NewRunner(fake.RunnerConfig{Logger: cfg.Logger})
	default:
		runner, err = process.NewExecRunner(process.ExecRunnerConfig{Launcher: paths.Launcher, Logger: cfg.Logger})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create process runner: %w", err)
	}

	c := &Client{
		paths:  paths,
		runner: runner,
		logger: cfg.Logger,
	}

	if cfg.HistoryDBPath != "" {
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: cfg.HistoryDBPath,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create history repository: %w", err)
		}
		c.history = repo
		c.closeFn = repo.Close
	}

	c.ingest, err = ingest.NewService(ingest.ServiceConfig{Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create ingest service: %w", err)
	}

	c.convert, err = convert.NewService(convert.ServiceConfig{
		ConverterFactory: c.newConverter,
		History:          c.history,
		Logger:           cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create convert service: %w", err)
	}

	return c, nil
}

// Close releases resources held by the client. After Close returns, the client
// must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

func (c *Client) newConverter(tool model.ConverterTool) (converter.Converter, error) {
	return converter.New(converter.Config{
		Tool:   tool,
		Paths:  c.paths,
		Runner: c.runner,
		Logger: c.logger,
	})
}

// Tools returns every converter tool with what it can convert.
func Tools() []ToolInfo {
	tools := model.Tools()
	result := make([]ToolInfo, 0, len(tools))
	for _, t := range tools {
		result = append(result, toolInfo(t))
	}
	return result
}

// Convert starts converting a batch in the background and returns it. Options
// problems fail here and nothing runs, while problems with a single file only fail
// that file.
//
// Cancelling ctx stops starting new files, like [Batch.Cancel].
func (c *Client) Convert(ctx context.Context, opts ConvertOpts) (*Batch, error) {
	ingested, err := c.ingest.Run(ctx, ingest.Request{
		Paths:     opts.Inputs,
		Tool:      model.ConverterTool(opts.Tool),
		Recursive: opts.Recursive,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("could not read inputs: %w", err))
	}

	baseFolder := opts.BaseFolder
	if baseFolder == "" {
		baseFolder = ingested.BaseFolder
	}

	b, err := c.convert.Start(ctx, model.BatchRequest{
		Inputs:            ingested.Inputs,
		OutputRoot:        opts.OutputRoot,
		BaseFolder:        baseFolder,
		Tool:              model.ConverterTool(opts.Tool),
		Format:            model.OutputFormat(opts.Format),
		Suffix:            opts.Suffix,
		ExtensionOverride: opts.ExtensionOverride,
		SkeletonPath:      opts.SkeletonPath,
		JobTimeout:        opts.JobTimeout,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return newBatch(b), nil
}

// Doctor runs preflight checks for the tools, all of them when none is set.
func (c *Client) Doctor(ctx context.Context, tools ...Tool) ([]CheckResult, error) {
	svc, err := doctor.NewService(doctor.ServiceConfig{
		Paths:  c.paths,
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create doctor service: %w", err)
	}

	req := doctor.Request{}
	for _, t := range tools {
		req.Tools = append(req.Tools, model.ConverterTool(t))
	}

	results, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalCheckResults(results), nil
}

// History returns the saved batches, newest first. The client must have been
// created with a history database.
func (c *Client) History(ctx context.Context, opts HistoryOpts) ([]BatchRecord, error) {
	if c.history == nil {
		return nil, fmt.Errorf("history is not enabled: %w", ErrNotValid)
	}

	svc, err := history.NewService(history.ServiceConfig{
		Repository: c.history,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create history service: %w", err)
	}

	batches, err := svc.Run(ctx, history.Request{
		BatchID:          opts.BatchID,
		Limit:            opts.Limit,
		OnlyWithFailures: opts.OnlyWithFailures,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalBatchRecords(batches), nil
}

func loadToolPaths(ctx context.Context, cfg Config) (model.ToolPaths, error) {
	defaultToolsDir := filepath.Join(cfg.DataDir, conventions.ToolsDir)

	configPath := cfg.ConfigPath
	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(cfg.DataDir, conventions.ConfigFile)
	}
	repo, name, err := iostorage.NewToolsConfigFileRepository(configPath)
	if err != nil {
		return model.ToolPaths{}, fmt.Errorf("%w: %w", ErrNotValid, err)
	}

	paths, err := repo.GetToolPaths(ctx, name, defaultToolsDir)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return conventions.DefaultToolPaths(defaultToolsDir), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return model.ToolPaths{}, fmt.Errorf("tools config %q: %w", configPath, ErrNotFound)
		}
		return model.ToolPaths{}, fmt.Errorf("could not load tools config: %w: %w", ErrNotValid, err)
	}

	return paths, nil
}
