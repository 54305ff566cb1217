package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"jprofile/domain/dataset"
	"jprofile/domain/profiling"
	"jprofile/internal/errors"
)

// ProfileService classifies and profiles every column of a dataset
type ProfileService struct {
	computer *profiling.Computer
	workers  int
	logger   *slog.Logger
}

// NewProfileService creates a profile service. Columns are profiled by at
// most workers goroutines at once.
func NewProfileService(cfg profiling.Config, workers int, logger *slog.Logger) *ProfileService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{
		computer: profiling.NewComputer(cfg),
		workers:  workers,
		logger:   logger.With("component", "profile_service"),
	}
}

// WithTopFrequencyLimit returns a service sharing this one's workers and
// logger with a different frequency table size
func (s *ProfileService) WithTopFrequencyLimit(limit int) *ProfileService {
	cfg := s.computer.Config()
	cfg.TopFrequencyLimit = limit
	return &ProfileService{
		computer: profiling.NewComputer(cfg),
		workers:  s.workers,
		logger:   s.logger,
	}
}

// Workers returns the concurrency limit
func (s *ProfileService) Workers() int {
	return s.workers
}

// ProfileColumn classifies a single column and computes its profile
func (s *ProfileService) ProfileColumn(col profiling.Column) (profiling.ColumnProfile, error) {
	cat, err := profiling.Classify(col)
	if err != nil {
		return profiling.ColumnProfile{}, errors.FromDomain(err)
	}

	p, err := s.computer.Compute(col, cat)
	if err != nil {
		return profiling.ColumnProfile{}, errors.FromDomain(err)
	}

	return profiling.ColumnProfile{Name: col.Name, Category: cat, Profile: p}, nil
}

// columnResult is the outcome for the column at the same dataset index
type columnResult struct {
	profile profiling.ColumnProfile
	err     error
}

// ProfileDataset profiles every column in parallel. A column that fails is
// recorded in the set's Errors and does not stop the others. Cancelling ctx
// aborts the run.
func (s *ProfileService) ProfileDataset(ctx context.Context, ds *dataset.Dataset) (*profiling.ProfileSet, error) {
	if ds == nil {
		return nil, errors.InvalidInput("dataset is nil")
	}
	if err := ds.Validate(); err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "invalid dataset")
	}

	startTime := time.Now()
	s.logger.Info("profiling dataset",
		"dataset", ds.Name,
		"columns", len(ds.Columns),
		"rows", ds.RowCount(),
		"workers", s.workers)

	results := make([]columnResult, len(ds.Columns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, col := range ds.Columns {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			colStart := time.Now()
			cp, err := s.ProfileColumn(col)
			if err != nil {
				s.logger.Warn("column profiling failed",
					slog.String("column", col.Name),
					slog.String("kind", col.Kind.String()),
					slog.String("code", errors.GetCode(err)),
					slog.Any("error", err))
				results[i].err = err
				return nil
			}

			s.logger.Debug("column profiled",
				slog.String("column", col.Name),
				slog.String("category", cp.Category.String()),
				slog.Float64("ms", float64(time.Since(colStart).Nanoseconds())/1e6))
			results[i].profile = cp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := profiling.NewProfileSet(ds.Name, ds.RowCount())
	set.Columns = ds.ColumnNames()
	for i, res := range results {
		name := ds.Columns[i].Name
		if res.err != nil {
			set.Errors[name] = res.err.Error()
			continue
		}
		set.Profiles[name] = res.profile
	}
	set.DurationMs = time.Since(startTime).Milliseconds()

	s.logger.Info("dataset profiled",
		"dataset", ds.Name,
		"profiled", len(set.Profiles),
		"failed", len(set.Errors),
		"duration_ms", set.DurationMs)

	return set, nil
}
