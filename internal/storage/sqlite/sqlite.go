package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.HistoryRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository, migrating the schema if required.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite history initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// SaveBatch stores the batch and its jobs in a single transaction. Saving an
// existing batch replaces it.
func (r *Repository) SaveBatch(ctx context.Context, b model.BatchRecord) error {
	if b.ID == "" {
		return fmt.Errorf("batch id is required: %w", model.ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, b.ID); err != nil {
		return fmt.Errorf("could not replace batch: %w", err)
	}

	query := `
		INSERT INTO batches (
			id, tool, format, output_root,
			total, succeeded, failed, cancelled,
			message, started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(
		ctx,
		query,
		b.ID,
		b.Tool,
		b.Format,
		b.OutputRoot,
		b.Total,
		b.Succeeded,
		b.Failed,
		b.Cancelled,
		b.Message,
		b.StartedAt.UnixMilli(),
		b.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("could not insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO jobs (batch_id, job_index, input_path, output_path, status, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, j := range b.Jobs {
		if _, err := stmt.ExecContext(ctx, b.ID, j.Index, j.InputPath, j.OutputPath, j.Status, j.Error); err != nil {
			return fmt.Errorf("could not insert job %d: %w", j.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Saved batch %s with %d jobs", b.ID, len(b.Jobs))
	return nil
}

const batchColumns = `id, tool, format, output_root, total, succeeded, failed, cancelled, message, started_at, finished_at`

// GetBatch returns a batch with its jobs.
func (r *Repository) GetBatch(ctx context.Context, id string) (*model.BatchRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	b, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("batch %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get batch: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT job_index, input_path, output_path, status, error
		FROM jobs
		WHERE batch_id = ?
		ORDER BY job_index ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("could not query jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var j model.JobRecord
		if err := rows.Scan(&j.Index, &j.InputPath, &j.OutputPath, &j.Status, &j.Error); err != nil {
			return nil, fmt.Errorf("could not scan job: %w", err)
		}
		b.Jobs = append(b.Jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate jobs: %w", err)
	}

	return &b, nil
}

// ListBatches returns the most recent batches first, without their jobs.
func (r *Repository) ListBatches(ctx context.Context, limit int) ([]model.BatchRecord, error) {
	query := `SELECT ` + batchColumns + ` FROM batches ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query batches: %w", err)
	}
	defer rows.Close()

	batches := []model.BatchRecord{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate batches: %w", err)
	}

	return batches, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(s scanner) (model.BatchRecord, error) {
	var b model.BatchRecord
	var startedAt, finishedAt int64

	err := s.Scan(
		&b.ID,
		&b.Tool,
		&b.Format,
		&b.OutputRoot,
		&b.Total,
		&b.Succeeded,
		&b.Failed,
		&b.Cancelled,
		&b.Message,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return model.BatchRecord{}, err
	}

	b.StartedAt = timeFromUnixMilli(startedAt)
	b.FinishedAt = timeFromUnixMilli(finishedAt)

	return b, nil
}

func timeFromUnixMilli(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
