package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dkoval/jobscout/internal/jobs"
)

type locationFilter struct {
	allowed     []string
	allowRemote bool
}

// NewLocation creates a filter that excludes jobs whose location has no
// overlap with the configured allow-list. Remote jobs always pass when
// remote is allowed. With an empty allow-list the filter is a no-op.
func NewLocation() Filter {
	return &locationFilter{}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Disable(string) {}

func (f *locationFilter) IsEnabled() bool { return true }

func (f *locationFilter) Validate(cfg *Config) error {
	f.allowed = nil
	f.allowRemote = true
	if cfg == nil {
		return nil
	}
	for _, loc := range cfg.AllowedLocations {
		if norm := jobs.Normalize(loc); norm != "" {
			f.allowed = append(f.allowed, norm)
		}
	}
	f.allowRemote = cfg.AllowRemote || len(cfg.AllowedLocations) == 0
	return nil
}

func (f *locationFilter) Apply(_ context.Context, deps Deps, set *Set) (*Set, Step, error) {
	initial := set.Len()
	if len(f.allowed) == 0 {
		return set, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := set.Items[:0]
	var excluded []string

	for _, c := range set.Items {
		loc := c.Job.Location
		if loc.Remote && f.allowRemote {
			kept = append(kept, c)
			continue
		}
		if f.matches(loc) {
			kept = append(kept, c)
			continue
		}
		set.reject(c, fmt.Sprintf("location %q not in allowed list", loc.String()))
		excluded = append(excluded, c.Job.ID)
	}
	set.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by location",
			zap.Strings("allowed_locations", f.allowed),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", set.Len()),
		)
	}

	return set, Step{Initial: initial, Dropped: len(excluded), Left: set.Len()}, nil
}

func (f *locationFilter) matches(loc jobs.Location) bool {
	city := jobs.Normalize(loc.City)
	state := jobs.Normalize(loc.State)
	country := jobs.Normalize(loc.Country)

	for _, allowed := range f.allowed {
		if allowed == city || allowed == state || allowed == country {
			return true
		}
		if city != "" && strings.Contains(city, allowed) {
			return true
		}
	}
	return false
}

func (f *locationFilter) Status() Status {
	details := map[string]string{}
	if len(f.allowed) > 0 {
		details["allowed"] = strings.Join(f.allowed, ",")
	}
	details["allow_remote"] = fmt.Sprintf("%t", f.allowRemote)
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
