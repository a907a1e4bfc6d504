package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type minScoreFilter struct {
	threshold float64
}

// NewMinScore creates a filter that excludes candidates whose overall
// relevance score is below the configured threshold. It must run after the
// scoring stage so candidates carry scores; an unscored candidate passes
// through untouched. With the default threshold of zero the filter is a
// no-op.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(string) {}

func (f *minScoreFilter) IsEnabled() bool { return true }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.threshold = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		return fmt.Errorf("threshold %v is outside [0, 1]", cfg.MinScore)
	}
	f.threshold = cfg.MinScore
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, set *Set) (*Set, Step, error) {
	initial := set.Len()
	if f.threshold <= 0 {
		return set, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := set.Items[:0]
	var excluded []string

	for _, c := range set.Items {
		if c.Score == nil || c.Score.Overall >= f.threshold {
			kept = append(kept, c)
			continue
		}
		set.reject(c, fmt.Sprintf("overall score %.3f below minimum %.3f", c.Score.Overall, f.threshold))
		excluded = append(excluded, c.Job.ID)
	}
	set.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by minimum score",
			zap.Float64("threshold", f.threshold),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", set.Len()),
		)
	}

	return set, Step{Initial: initial, Dropped: len(excluded), Left: set.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"threshold": fmt.Sprintf("%.3f", f.threshold)},
	}
}
