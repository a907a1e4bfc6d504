package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dkoval/jobscout/internal/fetch"
	"github.com/dkoval/jobscout/internal/filtering"
	"github.com/dkoval/jobscout/internal/profile"
	"github.com/dkoval/jobscout/internal/ranking"
	"github.com/dkoval/jobscout/internal/relevance"
)

var (
	// ErrNoProfile is returned when a search is requested with no profile.
	ErrNoProfile = errors.New("no profile available")
	// ErrInvalidConfig is returned before any fetching when the search
	// configuration is contradictory.
	ErrInvalidConfig = errors.New("invalid search configuration")
)

const scoringConcurrency = 8

// Config is the immutable configuration threaded into one search run.
type Config struct {
	Weights       relevance.Weights
	MinScore      float64
	MaxResults    int
	SourceTimeout time.Duration
	Filters       filtering.Config
}

// Validate surfaces configuration errors before any work is done.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("%w: minimum relevance score %v is outside [0, 1]", ErrInvalidConfig, c.MinScore)
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("%w: max results must not be negative", ErrInvalidConfig)
	}
	if err := c.Filters.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Agent wires the fetchers, the scoring strategy and the filter chain into
// one search pipeline.
type Agent struct {
	fetchers   []fetch.Fetcher
	strategy   relevance.Strategy
	newFilters func() []filtering.Filter
	cfg        Config
	logger     *zap.Logger
}

// New builds an agent. The strategy is usually a relevance.Hybrid. Filters
// carry per-run state set during Validate, so the agent takes a factory and
// builds a fresh chain for every search; concurrent searches never share
// filter instances. A nil factory falls back to DefaultFilters.
func New(fetchers []fetch.Fetcher, strategy relevance.Strategy, newFilters func() []filtering.Filter, cfg Config, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	if newFilters == nil {
		newFilters = DefaultFilters
	}
	return &Agent{
		fetchers:   fetchers,
		strategy:   strategy,
		newFilters: newFilters,
		cfg:        cfg,
		logger:     logger,
	}
}

// DefaultFilters returns the standard post-scoring filter chain.
func DefaultFilters() []filtering.Filter {
	return []filtering.Filter{
		filtering.NewSalary(),
		filtering.NewLocation(),
		filtering.NewKeyword(),
		filtering.NewMinScore(),
	}
}

// Search runs the full pipeline: fetch from every source, deduplicate, score
// every survivor against the profile, run the filter chain, rank and
// truncate. Partial source failures degrade completeness and are reported in
// the result; configuration and missing-profile errors fail the search
// before any fetching.
func (a *Agent) Search(ctx context.Context, prof *profile.Profile, q fetch.Query) (*ranking.Result, error) {
	if prof == nil {
		return nil, ErrNoProfile
	}
	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	fetched, failures := fetch.All(ctx, a.logger, a.fetchers, q, a.cfg.SourceTimeout)
	a.logger.Info("fetch stage complete",
		zap.Int("total_fetched", fetched.Len()),
		zap.Int("failed_sources", len(failures)),
	)

	deps := filtering.Deps{Logger: a.logger, Profile: prof}
	set := filtering.NewSet(fetched.Items)

	// Dedup runs on bare jobs so duplicates are never scored.
	set, err := filtering.Run(ctx, &a.cfg.Filters, deps, []filtering.Filter{filtering.NewDedup()}, set)
	if err != nil {
		return nil, err
	}

	a.scoreAll(ctx, prof, set)

	filters := a.newFilters()
	a.logger.Debug("running filter chain", zap.Any("filters", filtering.Describe(filters)))

	set, err = filtering.Run(ctx, &a.cfg.Filters, deps, filters, set)
	if err != nil {
		return nil, err
	}

	matches := ranking.Rank(set.Items, a.cfg.MinScore, a.cfg.MaxResults)

	result := &ranking.Result{
		Matches:      matches,
		TotalFetched: fetched.Len(),
		TotalMatched: len(matches),
		Exclusions:   set.Reasons,
	}
	if len(failures) > 0 {
		result.SourceErrors = make(map[string]string, len(failures))
		for source, ferr := range failures {
			result.SourceErrors[source] = ferr.Error()
		}
	}

	a.logger.Info("search complete",
		zap.Int("total_fetched", result.TotalFetched),
		zap.Int("total_matched", result.TotalMatched),
	)
	return result, nil
}

// scoreAll scores candidates in parallel. Scoring is pure per candidate; the
// indexed slice keeps the deterministic order whatever the completion order.
func (a *Agent) scoreAll(ctx context.Context, prof *profile.Profile, set *filtering.Set) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(scoringConcurrency)

	for _, c := range set.Items {
		g.Go(func() error {
			score, err := a.strategy.Match(gCtx, prof, c.Job)
			if err != nil {
				// One bad strategy invocation never aborts the batch.
				a.logger.Warn("scoring failed",
					zap.String("job_id", c.Job.ID),
					zap.Error(err),
				)
				return nil
			}
			c.Score = score
			return nil
		})
	}
	_ = g.Wait()
}
