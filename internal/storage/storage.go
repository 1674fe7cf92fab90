package storage

import (
	"context"

	"github.com/slok/hkxbatch/internal/model"
)

// HistoryRepository is the interface for finished batch persistence.
type HistoryRepository interface {
	// SaveBatch stores a finished batch with its jobs.
	SaveBatch(ctx context.Context, b model.BatchRecord) error
	// GetBatch returns a batch with its jobs by ID.
	GetBatch(ctx context.Context, id string) (*model.BatchRecord, error)
	// ListBatches returns the most recent batches first, without jobs. A limit of
	// 0 or less returns all of them.
	ListBatches(ctx context.Context, limit int) ([]model.BatchRecord, error)
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name HistoryRepository
