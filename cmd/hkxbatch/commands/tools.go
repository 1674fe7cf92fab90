package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/hkxbatch/internal/model"
)

type ToolsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	tools  []string
	format string
}

// NewToolsCommand returns the tools command.
func NewToolsCommand(rootCmd *RootCommand, app *kingpin.Application) *ToolsCommand {
	c := &ToolsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("tools", "List the converter tools and what they can convert.")
	c.Cmd.Flag("tool", "Only show this tool (repeatable).").EnumsVar(&c.tools, toolNames()...)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ToolsCommand) Name() string { return c.Cmd.FullCommand() }

func (c ToolsCommand) Run(ctx context.Context) error {
	tools := model.Tools()
	if len(c.tools) > 0 {
		var err error
		tools, err = parseTools(c.tools)
		if err != nil {
			return err
		}
	}

	if err := c.rootCmd.printer(c.format).PrintTools(tools); err != nil {
		return fmt.Errorf("could not print tools: %w", err)
	}

	return nil
}
