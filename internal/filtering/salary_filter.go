package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type salaryFilter struct {
	min float64
	max float64
}

// NewSalary creates a filter that excludes jobs whose entire salary range
// falls outside the configured bounds. A job with no stated salary passes
// through: absence of data is not grounds for exclusion.
func NewSalary() Filter {
	return &salaryFilter{}
}

func (f *salaryFilter) Name() string { return "salary" }

func (f *salaryFilter) Disable(string) {}

func (f *salaryFilter) IsEnabled() bool { return true }

func (f *salaryFilter) Validate(cfg *Config) error {
	f.min, f.max = 0, 0
	if cfg == nil {
		return nil
	}
	if cfg.MinSalary > 0 && cfg.MaxSalary > 0 && cfg.MinSalary > cfg.MaxSalary {
		return fmt.Errorf("minimum %.0f exceeds maximum %.0f", cfg.MinSalary, cfg.MaxSalary)
	}
	f.min = cfg.MinSalary
	f.max = cfg.MaxSalary
	return nil
}

func (f *salaryFilter) Apply(_ context.Context, deps Deps, set *Set) (*Set, Step, error) {
	initial := set.Len()
	if f.min <= 0 && f.max <= 0 {
		return set, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := set.Items[:0]
	var excluded []string

	for _, c := range set.Items {
		if !c.Job.Salary.HasRange() {
			kept = append(kept, c)
			continue
		}

		lo, hi := c.Job.Salary.Bounds()
		switch {
		case f.min > 0 && hi < f.min:
			set.reject(c, fmt.Sprintf("salary range up to %.0f below minimum %.0f", hi, f.min))
			excluded = append(excluded, c.Job.ID)
		case f.max > 0 && lo > f.max:
			set.reject(c, fmt.Sprintf("salary range from %.0f above maximum %.0f", lo, f.max))
			excluded = append(excluded, c.Job.ID)
		default:
			kept = append(kept, c)
		}
	}
	set.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by salary bounds",
			zap.Float64("min_salary", f.min),
			zap.Float64("max_salary", f.max),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", set.Len()),
		)
	}

	return set, Step{Initial: initial, Dropped: len(excluded), Left: set.Len()}, nil
}

func (f *salaryFilter) Status() Status {
	details := map[string]string{}
	if f.min > 0 {
		details["min_salary"] = fmt.Sprintf("%.0f", f.min)
	}
	if f.max > 0 {
		details["max_salary"] = fmt.Sprintf("%.0f", f.max)
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
