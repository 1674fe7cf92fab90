package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/hkxbatch/internal/app/convert"
	"github.com/slok/hkxbatch/internal/app/ingest"
	"github.com/slok/hkxbatch/internal/converter"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/process"
	"github.com/slok/hkxbatch/internal/storage"
	"github.com/slok/hkxbatch/internal/storage/sqlite"
)

type ConvertCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	inputs     []string
	tool       string
	format     string
	output     string
	base       string
	suffix     string
	ext        string
	skeleton   string
	filter     string
	recursive  bool
	jobTimeout time.Duration
	history    bool
	historyDB  string
	outFormat  string
}

// NewConvertCommand returns the convert command.
func NewConvertCommand(rootCmd *RootCommand, app *kingpin.Application) *ConvertCommand {
	c := &ConvertCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("convert", "Convert a batch of animation files.")
	c.Cmd.Arg("inputs", "Files or folders to convert.").Required().StringsVar(&c.inputs)
	c.Cmd.Flag("tool", "Converter tool.").Short('t').Required().EnumVar(&c.tool, toolNames()...)
	c.Cmd.Flag("to", "Output format.").Short('f').Required().EnumVar(&c.format, formatNames()...)
	c.Cmd.Flag("output", "Output folder (defaults to the folder of the first input).").Short('o').StringVar(&c.output)
	c.Cmd.Flag("base", "Base folder whose subfolder structure is mirrored in the output (defaults to the selected folder).").StringVar(&c.base)
	c.Cmd.Flag("suffix", "Suffix appended to the output file names.").StringVar(&c.suffix)
	c.Cmd.Flag("ext", "Output file extension override.").StringVar(&c.ext)
	c.Cmd.Flag("skeleton", "Skeleton file, required for KF output.").ExistingFileVar(&c.skeleton)
	c.Cmd.Flag("filter", "Input filter for folders (all, hkx, xml, kf).").Default(string(model.InputFilterAll)).StringVar(&c.filter)
	c.Cmd.Flag("recursive", "Scan folder subdirectories.").Short('r').BoolVar(&c.recursive)
	c.Cmd.Flag("job-timeout", "Kill a converter running longer than this (0 disables it).").Default("0s").DurationVar(&c.jobTimeout)
	c.Cmd.Flag("history", "Save the batch in the history database of the data dir (see the history command).").BoolVar(&c.history)
	c.Cmd.Flag("history-db", "Save the batch in this history database instead.").StringVar(&c.historyDB)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.outFormat, formatTable, formatJSON)

	return c
}

func (c ConvertCommand) Name() string { return c.Cmd.FullCommand() }

func (c ConvertCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	p := c.rootCmd.printer(c.outFormat)

	tool := model.ConverterTool(c.tool)

	ingestSvc, err := ingest.NewService(ingest.ServiceConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create ingest service: %w", err)
	}
	ingested, err := ingestSvc.Run(ctx, ingest.Request{
		Paths:     c.inputs,
		Tool:      tool,
		Filter:    model.InputFilter(c.filter),
		Recursive: c.recursive,
	})
	if err != nil {
		return fmt.Errorf("could not ingest inputs: %w", err)
	}
	if len(ingested.Skipped) > 0 {
		logger.Infof("%d selected files skipped", len(ingested.Skipped))
	}

	req, err := c.batchRequest(ingested)
	if err != nil {
		return err
	}

	paths, err := c.rootCmd.ToolPaths(ctx)
	if err != nil {
		return err
	}

	runner, err := process.NewExecRunner(process.ExecRunnerConfig{
		Launcher: paths.Launcher,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create process runner: %w", err)
	}

	var history storage.HistoryRepository
	if dbPath := c.historyDBPath(); dbPath != "" {
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: dbPath,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("could not create history repository: %w", err)
		}
		defer repo.Close()
		history = repo
	}

	svc, err := convert.NewService(convert.ServiceConfig{
		ConverterFactory: func(tool model.ConverterTool) (converter.Converter, error) {
			return converter.New(converter.Config{
				Tool:   tool,
				Paths:  paths,
				Runner: runner,
				Logger: logger,
			})
		},
		History: history,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	batch, err := svc.Start(ctx, req)
	if err != nil {
		return fmt.Errorf("could not start batch: %w", err)
	}

	for ev := range batch.Events() {
		if err := p.PrintEvent(ev); err != nil {
			logger.Errorf("Could not print event: %s", err)
		}
	}

	outcome := batch.Wait()
	if outcome.Cancelled {
		return nil
	}

	if err := p.PrintSummary(outcome); err != nil {
		return fmt.Errorf("could not print summary: %w", err)
	}

	if outcome.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", outcome.Failed, outcome.Total)
	}

	return nil
}

func (c ConvertCommand) batchRequest(ingested *ingest.Result) (model.BatchRequest, error) {
	// Inputs and base folder must share the same form for the output layout.
	inputs := make([]string, 0, len(ingested.Inputs))
	for _, in := range ingested.Inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return model.BatchRequest{}, fmt.Errorf("could not resolve input %q: %w", in, err)
		}
		inputs = append(inputs, abs)
	}

	req := model.BatchRequest{
		Inputs:            inputs,
		OutputRoot:        c.output,
		BaseFolder:        ingested.BaseFolder,
		Tool:              model.ConverterTool(c.tool),
		Format:            model.OutputFormat(c.format),
		Suffix:            c.suffix,
		ExtensionOverride: c.ext,
		SkeletonPath:      c.skeleton,
		JobTimeout:        c.jobTimeout,
	}
	if c.base != "" {
		req.BaseFolder = c.base
	}

	if req.OutputRoot == "" && len(req.Inputs) > 0 {
		req.OutputRoot = defaultOutputRoot(req.Inputs)
	}

	var err error
	if req.OutputRoot != "" {
		if req.OutputRoot, err = filepath.Abs(req.OutputRoot); err != nil {
			return req, fmt.Errorf("could not resolve output folder: %w", err)
		}
	}
	if req.BaseFolder != "" {
		if req.BaseFolder, err = filepath.Abs(req.BaseFolder); err != nil {
			return req, fmt.Errorf("could not resolve base folder: %w", err)
		}
	}
	if req.SkeletonPath != "" {
		if req.SkeletonPath, err = filepath.Abs(req.SkeletonPath); err != nil {
			return req, fmt.Errorf("could not resolve skeleton file: %w", err)
		}
	}

	return req, nil
}

// defaultOutputRoot is the folder of the first input.
func defaultOutputRoot(inputs []string) string {
	return filepath.Dir(inputs[0])
}

// historyDBPath returns where the batch is saved, empty when history is disabled.
func (c ConvertCommand) historyDBPath() string {
	switch {
	case c.historyDB != "":
		return c.historyDB
	case c.history:
		return c.rootCmd.HistoryDBPath()
	default:
		return ""
	}
}
