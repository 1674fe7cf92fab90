package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.HistoryRepository.
type Repository struct {
	batches map[string]model.BatchRecord
	mu      sync.RWMutex
	logger  log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		batches: make(map[string]model.BatchRecord),
		logger:  cfg.Logger,
	}, nil
}

// SaveBatch stores a batch, replacing any batch with the same ID.
func (r *Repository) SaveBatch(ctx context.Context, b model.BatchRecord) error {
	if b.ID == "" {
		return fmt.Errorf("batch id is required: %w", model.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b.Jobs = slices.Clone(b.Jobs)
	r.batches[b.ID] = b
	r.logger.Debugf("Saved batch in repository: %s", b.ID)

	return nil
}

// GetBatch retrieves a batch by ID.
func (r *Repository) GetBatch(ctx context.Context, id string) (*model.BatchRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.batches[id]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", id, model.ErrNotFound)
	}

	// Return a copy
	b.Jobs = slices.Clone(b.Jobs)
	return &b, nil
}

// ListBatches returns the batches newest first, without jobs.
func (r *Repository) ListBatches(ctx context.Context, limit int) ([]model.BatchRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batches := make([]model.BatchRecord, 0, len(r.batches))
	for _, b := range r.batches {
		b.Jobs = nil
		batches = append(batches, b)
	}

	sort.Slice(batches, func(i, j int) bool {
		if batches[i].StartedAt.Equal(batches[j].StartedAt) {
			return batches[i].ID > batches[j].ID
		}
		return batches[i].StartedAt.After(batches[j].StartedAt)
	})

	if limit > 0 && len(batches) > limit {
		batches = batches[:limit]
	}

	return batches, nil
}
