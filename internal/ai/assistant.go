package ai

import (
	"context"

	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/profile"
)

// Assessment is a model-produced relevance estimate for one profile/job pair.
type Assessment struct {
	Score          float64
	Dimensions     map[string]float64
	MatchingSkills []string
	MissingSkills  []string
	Reason         string
	Raw            string
}

// Matcher evaluates a profile against a job using a text-generation backend.
// Implementations must be safe for concurrent use.
type Matcher interface {
	Evaluate(ctx context.Context, p *profile.Profile, j *jobs.Job) (*Assessment, error)
}
