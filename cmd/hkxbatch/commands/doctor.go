package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/hkxbatch/internal/app/doctor"
	"github.com/slok/hkxbatch/internal/model"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	tools  []string
	format string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for the converter tools.")
	c.Cmd.Flag("tool", "Tool to check (repeatable), all of them by default.").EnumsVar(&c.tools, toolNames()...)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	tools, err := parseTools(c.tools)
	if err != nil {
		return err
	}

	paths, err := c.rootCmd.ToolPaths(ctx)
	if err != nil {
		return err
	}

	svc, err := doctor.NewService(doctor.ServiceConfig{
		Paths:  paths,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	results, err := svc.Run(ctx, doctor.Request{Tools: tools})
	if err != nil {
		return fmt.Errorf("could not run checks: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintChecks(results); err != nil {
		return fmt.Errorf("could not print checks: %w", err)
	}

	if sum := model.SummarizeChecks(results); !sum.Passed() {
		return fmt.Errorf("preflight checks failed with %d error(s)", sum.Errors)
	}

	return nil
}
