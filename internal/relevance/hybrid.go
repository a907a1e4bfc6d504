package relevance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/profile"
)

// Weights maps dimension names to non-negative weights. Weights need not sum
// to one; the aggregator normalizes over the dimensions that were computable.
type Weights map[Dimension]float64

// DefaultWeights mirrors the configuration defaults.
func DefaultWeights() Weights {
	return Weights{
		DimSkills:     0.3,
		DimExperience: 0.25,
		DimLocation:   0.2,
		DimSalary:     0.15,
		DimLevel:      0.1,
	}
}

// Validate rejects negative weights and unknown dimension names.
func (w Weights) Validate() error {
	for dim, weight := range w {
		if weight < 0 {
			return fmt.Errorf("weight for dimension %q is negative: %v", dim, weight)
		}
		known := false
		for _, d := range AllDimensions {
			if d == dim {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown dimension %q in weights", dim)
		}
	}
	return nil
}

// Hybrid runs an ordered list of strategies and merges their scores.
//
// When several strategies define the same dimension their values are
// averaged; a defined value always wins over an undefined one. The overall
// score is the weighted sum of defined dimensions normalized by the sum of
// their weights. Skill sets are unioned across strategies.
type Hybrid struct {
	strategies []Strategy
	weights    Weights
	logger     *zap.Logger
}

// NewHybrid builds the aggregator. Weights must already be validated; nil
// weights fall back to the defaults.
func NewHybrid(strategies []Strategy, weights Weights, logger *zap.Logger) *Hybrid {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hybrid{strategies: strategies, weights: weights, logger: logger}
}

func (h *Hybrid) Name() string { return "hybrid" }

// Match runs every strategy for the pair. A strategy returning an error is
// logged and treated as fully undefined; one bad strategy invocation never
// aborts the batch.
func (h *Hybrid) Match(ctx context.Context, p *profile.Profile, j *jobs.Job) (*Score, error) {
	if len(h.strategies) == 0 {
		return nil, fmt.Errorf("hybrid aggregator has no strategies")
	}

	sums := make(map[Dimension]float64)
	counts := make(map[Dimension]int)
	merged := NewScore()

	for _, strategy := range h.strategies {
		score, err := h.runStrategy(ctx, strategy, p, j)
		if err != nil {
			h.logger.Warn("strategy evaluation failed",
				zap.String("strategy", strategy.Name()),
				zap.String("job_id", j.ID),
				zap.Error(err),
			)
			continue
		}
		if score.Empty() {
			h.logger.Debug("strategy produced no data",
				zap.String("strategy", strategy.Name()),
				zap.String("job_id", j.ID),
			)
			continue
		}

		for dim, v := range score.Dimensions {
			sums[dim] += v
			counts[dim]++
		}
		merged.Matching = mergeSkillSets(merged.Matching, score.Matching)
		merged.Missing = mergeSkillSets(merged.Missing, score.Missing)
	}

	var weighted, totalWeight float64
	for _, dim := range AllDimensions {
		n := counts[dim]
		if n == 0 {
			continue
		}
		avg := sums[dim] / float64(n)
		merged.SetDimension(dim, avg)

		w := h.weights[dim]
		weighted += w * avg
		totalWeight += w
	}
	if totalWeight > 0 {
		merged.Overall = clamp01(weighted / totalWeight)
	}

	// A skill one strategy matched is not missing, whatever another said.
	merged.Missing = subtractSkills(merged.Missing, merged.Matching)

	return merged, nil
}

// runStrategy converts a panicking strategy into an error so the batch
// survives it.
func (h *Hybrid) runStrategy(ctx context.Context, s Strategy, p *profile.Profile, j *jobs.Job) (score *Score, err error) {
	defer func() {
		if r := recover(); r != nil {
			score = nil
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()
	return s.Match(ctx, p, j)
}

func subtractSkills(from, remove []string) []string {
	if len(from) == 0 || len(remove) == 0 {
		return from
	}
	drop := make(map[string]struct{}, len(remove))
	for _, s := range remove {
		drop[jobs.Normalize(s)] = struct{}{}
	}
	out := from[:0]
	for _, s := range from {
		if _, ok := drop[jobs.Normalize(s)]; !ok {
			out = append(out, s)
		}
	}
	return out
}
