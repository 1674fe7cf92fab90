package history

import (
	"context"
	"fmt"

	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.HistoryRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.History"})

	return nil
}

// Service lists the finished batches.
type Service struct {
	repo   storage.HistoryRepository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the history request parameters.
type Request struct {
	// BatchID returns only that batch, with its jobs.
	BatchID string
	// Limit is the maximum number of batches, 0 for all.
	Limit int
	// OnlyWithFailures only returns batches that had failed jobs.
	OnlyWithFailures bool
}

// Run returns the batches newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.BatchRecord, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrValidation)
	}

	if req.BatchID != "" {
		b, err := s.repo.GetBatch(ctx, req.BatchID)
		if err != nil {
			return nil, fmt.Errorf("could not get batch: %w", err)
		}
		return []model.BatchRecord{*b}, nil
	}

	// Filtering happens after the query so the limit is applied here.
	limit := req.Limit
	if req.OnlyWithFailures {
		limit = 0
	}
	batches, err := s.repo.ListBatches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list batches: %w", err)
	}

	if req.OnlyWithFailures {
		filtered := make([]model.BatchRecord, 0, len(batches))
		for _, b := range batches {
			if b.Failed > 0 {
				filtered = append(filtered, b)
			}
		}
		batches = filtered
		if req.Limit > 0 && len(batches) > req.Limit {
			batches = batches[:req.Limit]
		}
	}

	s.logger.Debugf("found %d batches", len(batches))
	return batches, nil
}
