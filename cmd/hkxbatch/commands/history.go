package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/hkxbatch/internal/app/history"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/storage/sqlite"
	"github.com/slok/hkxbatch/internal/utils/file"
)

type HistoryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	dbPath   string
	batchID  string
	limit    int
	failures bool
	format   string
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(rootCmd *RootCommand, app *kingpin.Application) *HistoryCommand {
	c := &HistoryCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("history", "Show the conversion batches saved with 'convert --history'.")
	c.Cmd.Arg("batch-id", "Show a single batch with its files.").StringVar(&c.batchID)
	c.Cmd.Flag("history-db", "History database (defaults to history.db inside the data dir).").StringVar(&c.dbPath)
	c.Cmd.Flag("limit", "Maximum number of batches (0 for all).").Default("20").IntVar(&c.limit)
	c.Cmd.Flag("failed", "Only batches with failed files.").BoolVar(&c.failures)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c HistoryCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	dbPath := c.dbPath
	if dbPath == "" {
		dbPath = c.rootCmd.HistoryDBPath()
	}

	p := c.rootCmd.printer(c.format)

	// Reading never creates the database.
	if !file.IsRegularFile(dbPath) {
		if c.batchID != "" {
			return fmt.Errorf("batch %s: %w", c.batchID, model.ErrNotFound)
		}
		if c.format == formatTable {
			return p.PrintMessage(fmt.Sprintf("No history at %s, save batches with 'convert --history'", dbPath))
		}
		return p.PrintHistory(nil)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: dbPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	batches, err := svc.Run(ctx, history.Request{
		BatchID:          c.batchID,
		Limit:            c.limit,
		OnlyWithFailures: c.failures,
	})
	if err != nil {
		return fmt.Errorf("could not get history: %w", err)
	}

	if c.batchID != "" {
		return p.PrintBatch(batches[0])
	}

	if len(batches) == 0 && c.format == formatTable {
		return p.PrintMessage("No batches found")
	}

	return p.PrintHistory(batches)
}
