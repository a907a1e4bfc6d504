package fetch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dkoval/jobscout/internal/jobs"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxResults  = 50
	maxConcurrentFetch = 4
)

// Query describes one job search to run against the sources.
type Query struct {
	Text       string `json:"text" mapstructure:"text"`
	Location   string `json:"location,omitempty" mapstructure:"location"`
	RemoteOnly bool   `json:"remote_only,omitempty" mapstructure:"remote-only"`
	MaxResults int    `json:"max_results,omitempty" mapstructure:"max-results"`
}

// Fetcher retrieves postings from one source. Implementations must honor
// the context deadline; a fetcher that fails contributes nothing to the run.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]*jobs.Job, error)
}

// All fetches concurrently from every source with a per-source timeout.
// A timed-out or failing source yields an empty result plus an entry in the
// returned error map and never blocks the others. Result order follows the
// fetchers list regardless of completion order.
func All(ctx context.Context, logger *zap.Logger, fetchers []Fetcher, q Query, timeout time.Duration) (*jobs.Jobs, map[string]error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if q.MaxResults <= 0 {
		q.MaxResults = defaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	perSource := make([][]*jobs.Job, len(fetchers))
	failures := make(map[string]error)
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetch)

	for i, fetcher := range fetchers {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gCtx, timeout)
			defer cancel()

			start := time.Now()
			list, err := fetcher.Fetch(fetchCtx, q)
			if err != nil {
				logger.Warn("source fetch failed",
					zap.String("source", fetcher.Name()),
					zap.Duration("elapsed", time.Since(start)),
					zap.Error(err),
				)
				mu.Lock()
				failures[fetcher.Name()] = err
				mu.Unlock()
				// Source failures degrade completeness, never the run.
				return nil
			}

			logger.Info("fetched jobs from source",
				zap.String("source", fetcher.Name()),
				zap.Int("count", len(list)),
				zap.Duration("elapsed", time.Since(start)),
			)
			perSource[i] = list
			return nil
		})
	}
	_ = g.Wait()

	all := &jobs.Jobs{}
	for _, list := range perSource {
		all.Append(list...)
	}
	return all, failures
}
