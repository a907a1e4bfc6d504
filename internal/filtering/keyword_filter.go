package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dkoval/jobscout/internal/jobs"
)

type keywordFilter struct {
	excluded []string
}

// NewKeyword creates a filter that excludes jobs containing any configured
// phrase in their title or description. Matching is case-insensitive
// substring matching.
func NewKeyword() Filter {
	return &keywordFilter{}
}

func (f *keywordFilter) Name() string { return "keyword" }

func (f *keywordFilter) Disable(string) {}

func (f *keywordFilter) IsEnabled() bool { return true }

func (f *keywordFilter) Validate(cfg *Config) error {
	f.excluded = nil
	if cfg == nil {
		return nil
	}
	for _, kw := range cfg.ExcludedKeywords {
		if norm := jobs.Normalize(kw); norm != "" {
			f.excluded = append(f.excluded, norm)
		}
	}
	return nil
}

func (f *keywordFilter) Apply(_ context.Context, deps Deps, set *Set) (*Set, Step, error) {
	initial := set.Len()
	if len(f.excluded) == 0 {
		return set, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := set.Items[:0]
	var excluded []string

	for _, c := range set.Items {
		blob := jobs.Normalize(c.Job.Title + " " + c.Job.Description)
		hit := ""
		for _, kw := range f.excluded {
			if strings.Contains(blob, kw) {
				hit = kw
				break
			}
		}
		if hit != "" {
			set.reject(c, "contains excluded keyword: "+hit)
			excluded = append(excluded, c.Job.ID)
			continue
		}
		kept = append(kept, c)
	}
	set.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by keywords",
			zap.Strings("excluded_keywords", f.excluded),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", set.Len()),
		)
	}

	return set, Step{Initial: initial, Dropped: len(excluded), Left: set.Len()}, nil
}

func (f *keywordFilter) Status() Status {
	details := map[string]string{}
	if len(f.excluded) > 0 {
		details["keywords"] = strings.Join(f.excluded, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
