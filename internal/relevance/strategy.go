package relevance

import (
	"context"

	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/profile"
)

// Strategy produces a relevance score for one profile/job pair. A strategy
// that cannot compute anything for a pair returns a score with no defined
// dimensions rather than an error; errors are reserved for genuine failures
// and never abort a batch (the aggregator recovers them per job).
type Strategy interface {
	Name() string
	Match(ctx context.Context, p *profile.Profile, j *jobs.Job) (*Score, error)
}

type skillStrategy struct{}

// NewSkillStrategy returns a strategy scoring only the skills dimension.
func NewSkillStrategy() Strategy { return skillStrategy{} }

func (skillStrategy) Name() string { return "skill_based" }

func (skillStrategy) Match(_ context.Context, p *profile.Profile, j *jobs.Job) (*Score, error) {
	score := NewScore()
	if res, ok := ScoreSkills(p, j); ok {
		score.SetDimension(DimSkills, res.Score)
		score.Matching = res.Matching
		score.Missing = res.Missing
	}
	return score, nil
}

type experienceStrategy struct{}

// NewExperienceStrategy returns a strategy scoring only the experience dimension.
func NewExperienceStrategy() Strategy { return experienceStrategy{} }

func (experienceStrategy) Name() string { return "experience_based" }

func (experienceStrategy) Match(_ context.Context, p *profile.Profile, j *jobs.Job) (*Score, error) {
	score := NewScore()
	if v, ok := ScoreExperience(p, j); ok {
		score.SetDimension(DimExperience, v)
	}
	return score, nil
}

type compositeStrategy struct{}

// NewCompositeStrategy returns the default deterministic strategy computing
// all five dimensions with no external dependencies.
func NewCompositeStrategy() Strategy { return compositeStrategy{} }

func (compositeStrategy) Name() string { return "deterministic" }

func (compositeStrategy) Match(_ context.Context, p *profile.Profile, j *jobs.Job) (*Score, error) {
	score := NewScore()

	if res, ok := ScoreSkills(p, j); ok {
		score.SetDimension(DimSkills, res.Score)
		score.Matching = res.Matching
		score.Missing = res.Missing
	}
	if v, ok := ScoreExperience(p, j); ok {
		score.SetDimension(DimExperience, v)
	}
	if v, ok := ScoreLocation(p, j); ok {
		score.SetDimension(DimLocation, v)
	}
	if v, ok := ScoreSalary(p, j); ok {
		score.SetDimension(DimSalary, v)
	}
	if v, ok := ScoreLevel(p, j); ok {
		score.SetDimension(DimLevel, v)
	}

	return score, nil
}
