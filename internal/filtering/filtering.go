package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/profile"
	"github.com/dkoval/jobscout/internal/relevance"
)

// Candidate pairs a job with its relevance score. The score is nil until the
// scoring stage has run; filters that need it (minimum score) sit after that
// stage in the chain.
type Candidate struct {
	Job   *jobs.Job
	Score *relevance.Score
}

// Set is the working set flowing through the pipeline: surviving candidates
// in order, plus the exclusion reasons recorded so far. A job rejected by an
// earlier filter is never evaluated by a later one, so each excluded job
// carries exactly one reason.
type Set struct {
	Items   []*Candidate
	Reasons map[string][]string
}

// NewSet wraps bare jobs into an unscored working set.
func NewSet(list []*jobs.Job) *Set {
	items := make([]*Candidate, 0, len(list))
	for _, j := range list {
		items = append(items, &Candidate{Job: j})
	}
	return &Set{Items: items, Reasons: make(map[string][]string)}
}

func (s *Set) Len() int { return len(s.Items) }

// Jobs returns the surviving jobs in order.
func (s *Set) Jobs() []*jobs.Job {
	out := make([]*jobs.Job, 0, len(s.Items))
	for _, c := range s.Items {
		out = append(out, c.Job)
	}
	return out
}

func (s *Set) reject(c *Candidate, reason string) {
	s.Reasons[c.Job.ID] = append(s.Reasons[c.Job.ID], reason)
}

// Filter is a single narrowing step. Apply consumes the full surviving set
// and returns the reduced set plus removal counts; exclusion reasons go into
// the set itself.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, set *Set) (*Set, Step, error)
}

// Deps aggregates dependencies shared across filtering steps.
type Deps struct {
	Logger  *zap.Logger
	Profile *profile.Profile
}

// Step describes the result of executing one filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config carries the per-filter parameters consumed during Validate.
type Config struct {
	MinSalary        float64
	MaxSalary        float64
	AllowedLocations []string
	AllowRemote      bool
	ExcludedKeywords []string
	MinScore         float64
}

// Validate rejects contradictory filter bounds before any work is done.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.MinSalary > 0 && c.MaxSalary > 0 && c.MinSalary > c.MaxSalary {
		return fmt.Errorf("salary filter minimum %.0f exceeds maximum %.0f", c.MinSalary, c.MaxSalary)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("minimum score %v is outside [0, 1]", c.MinScore)
	}
	return nil
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Run executes the supplied filters sequentially. All enabled filters are
// validated before the first one is applied, so a misconfigured chain fails
// before touching the set.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, set *Set) (*Set, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, set)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		set = next
	}

	return set, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}
		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
