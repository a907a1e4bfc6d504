package filtering

import (
	"context"

	"go.uber.org/zap"
)

type dedupFilter struct{}

// NewDedup creates a filter that removes duplicate postings across sources.
// Jobs are keyed by a content-derived signature rather than raw id, because
// the same posting can arrive from two sources with different ids. The first
// occurrence wins.
func NewDedup() Filter {
	return &dedupFilter{}
}

func (f *dedupFilter) Name() string { return "dedup" }

func (f *dedupFilter) Disable(string) {}

func (f *dedupFilter) IsEnabled() bool { return true }

func (f *dedupFilter) Validate(*Config) error { return nil }

func (f *dedupFilter) Apply(_ context.Context, deps Deps, set *Set) (*Set, Step, error) {
	initial := set.Len()
	seen := make(map[string]struct{}, initial)
	kept := set.Items[:0]
	var excluded []string

	for _, c := range set.Items {
		sig := c.Job.Signature()
		if _, dup := seen[sig]; dup {
			set.reject(c, "duplicate of "+sig)
			excluded = append(excluded, c.Job.ID)
			continue
		}
		seen[sig] = struct{}{}
		kept = append(kept, c)
	}
	set.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding duplicate jobs",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", set.Len()),
		)
	}

	return set, Step{Initial: initial, Dropped: len(excluded), Left: set.Len()}, nil
}

func (f *dedupFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
