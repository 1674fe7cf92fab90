package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
)

// ServiceConfig is the configuration for the ingest service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Ingest"})
	return nil
}

// Service turns the files and folders selected by the user into batch inputs.
type Service struct {
	logger log.Logger
}

// NewService creates a new ingest service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{logger: cfg.Logger}, nil
}

// Request is the ingest request.
type Request struct {
	// Paths are files or folders, in selection order.
	Paths []string
	// Tool restricts the accepted extensions.
	Tool model.ConverterTool
	// Filter restricts the accepted extensions further, all by default.
	Filter model.InputFilter
	// Recursive scans the folders subdirectories.
	Recursive bool
}

// Result is the ingest result.
type Result struct {
	// Inputs are the files to convert, without duplicates, in selection order.
	Inputs []string
	// BaseFolder is the last selected folder, empty when only files were selected.
	BaseFolder string
	// Skipped are the selected files rejected by the filter.
	Skipped []string
}

// Run resolves the request paths into batch inputs.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if _, err := model.ParseConverterTool(string(req.Tool)); err != nil {
		return nil, err
	}
	filter := req.Filter
	if filter == "" {
		filter = model.InputFilterAll
	}
	if !slices.Contains(model.InputFilters(req.Tool), filter) {
		return nil, fmt.Errorf("filter %q is not available for %s: %w", filter, req.Tool.Label(), model.ErrValidation)
	}

	res := &Result{}
	seen := map[string]bool{}
	add := func(path string) {
		key := filepath.Clean(path)
		if seen[key] {
			return
		}
		seen[key] = true
		res.Inputs = append(res.Inputs, path)
	}

	for _, p := range req.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%q: %w", p, model.ErrNotFound)
			}
			return nil, fmt.Errorf("could not stat %q: %w: %w", p, model.ErrIO, err)
		}

		if !info.IsDir() {
			if filter.Matches(req.Tool, p) {
				add(p)
			} else {
				s.logger.Warningf("Skipping %q, not accepted by %s with %s filter", p, req.Tool.Label(), filter)
				res.Skipped = append(res.Skipped, p)
			}
			continue
		}

		files, err := s.scanDir(ctx, p, req.Tool, filter, req.Recursive)
		if err != nil {
			return nil, err
		}
		s.logger.Debugf("Found %d files in %q", len(files), p)
		for _, f := range files {
			add(f)
		}
		res.BaseFolder = p
	}

	return res, nil
}

func (s *Service) scanDir(ctx context.Context, dir string, tool model.ConverterTool, filter model.InputFilter, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		// Leftovers of interrupted conversions.
		if strings.HasPrefix(d.Name(), conventions.StagingFilePrefix) {
			return nil
		}
		if d.Type().IsRegular() && filter.Matches(tool, path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("could not scan %q: %w: %w", dir, model.ErrIO, err)
	}

	return files, nil
}
