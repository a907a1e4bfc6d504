package relevance

import (
	"context"

	"go.uber.org/zap"

	"github.com/dkoval/jobscout/internal/ai"
	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/profile"
)

// modelStrategy adapts an ai.Matcher into a Strategy. It degrades gracefully:
// an unavailable backend or unparsable output yields an all-undefined score,
// never an error, so callers fall back to whatever the deterministic
// strategies produced.
type modelStrategy struct {
	matcher ai.Matcher
	logger  *zap.Logger
}

// NewModelStrategy wraps the model-assisted matcher as a scoring strategy.
func NewModelStrategy(matcher ai.Matcher, logger *zap.Logger) Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &modelStrategy{matcher: matcher, logger: logger}
}

func (m *modelStrategy) Name() string { return "model_assisted" }

func (m *modelStrategy) Match(ctx context.Context, p *profile.Profile, j *jobs.Job) (*Score, error) {
	if m.matcher == nil {
		return NewScore(), nil
	}

	assessment, err := m.matcher.Evaluate(ctx, p, j)
	if err != nil || assessment == nil {
		m.logger.Warn("model evaluation unavailable",
			zap.String("job_id", j.ID),
			zap.Error(err),
		)
		return NewScore(), nil
	}

	score := NewScore()
	for name, v := range assessment.Dimensions {
		for _, dim := range AllDimensions {
			if string(dim) == name {
				score.SetDimension(dim, v)
			}
		}
	}
	// A response with a scalar estimate but no per-dimension breakdown stays
	// all-undefined. Mapping the scalar onto a named dimension would dilute
	// that dimension's deterministic definition when strategies are averaged.
	if len(score.Dimensions) == 0 {
		m.logger.Warn("model response carried no dimension breakdown",
			zap.String("job_id", j.ID),
		)
	}

	score.Matching = mergeSkillSets(score.Matching, assessment.MatchingSkills)
	score.Missing = mergeSkillSets(score.Missing, assessment.MissingSkills)

	return score, nil
}
