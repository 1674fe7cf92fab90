package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/printer"
	iostorage "github.com/slok/hkxbatch/internal/storage/io"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DataDir    string
	ConfigPath string

	// Color is true when stdout supports colored output and it was not disabled.
	Color bool

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger and output color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("data-dir", "Directory with the tools, the config and the history database.").Default(defaultDataDir).StringVar(&c.DataDir)
	app.Flag("config", "Path to the tools configuration YAML file (defaults to config.yaml inside the data dir).").StringVar(&c.ConfigPath)

	return c
}

// ToolPaths returns the converter locations. The configuration file is optional
// unless it was set explicitly, without it the tools are expected inside the data dir.
func (c RootCommand) ToolPaths(ctx context.Context) (model.ToolPaths, error) {
	defaultToolsDir := conventions.DataFilePath(c.DataDir, conventions.ToolsDir)

	configPath := c.ConfigPath
	explicit := configPath != ""
	if !explicit {
		configPath = conventions.DataFilePath(c.DataDir, conventions.ConfigFile)
	}

	repo, name, err := iostorage.NewToolsConfigFileRepository(configPath)
	if err != nil {
		return model.ToolPaths{}, err
	}

	paths, err := repo.GetToolPaths(ctx, name, defaultToolsDir)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			c.Logger.Debugf("No tools config at %s, using %s", configPath, defaultToolsDir)
			return conventions.DefaultToolPaths(defaultToolsDir), nil
		}
		return model.ToolPaths{}, fmt.Errorf("could not load tools config: %w", err)
	}

	return paths, nil
}

// HistoryDBPath returns the default history database path.
func (c RootCommand) HistoryDBPath() string {
	return conventions.DataFilePath(c.DataDir, conventions.HistoryDBFile)
}

func (c RootCommand) printer(format string) printer.Printer {
	switch format {
	case formatJSON:
		return printer.NewJSONPrinter(c.Stdout)
	default:
		return printer.NewTablePrinter(c.Stdout, c.Color)
	}
}

func parseTools(names []string) ([]model.ConverterTool, error) {
	tools := make([]model.ConverterTool, 0, len(names))
	for _, n := range names {
		t, err := model.ParseConverterTool(n)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func toolNames() []string {
	names := []string{}
	for _, t := range model.Tools() {
		names = append(names, string(t))
	}
	return names
}

func formatNames() []string {
	names := []string{}
	for _, f := range model.OutputFormats() {
		names = append(names, string(f))
	}
	return names
}
