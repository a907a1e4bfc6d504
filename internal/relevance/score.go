package relevance

import "sort"

// Dimension names one scoring facet.
type Dimension string

const (
	DimSkills     Dimension = "skills"
	DimExperience Dimension = "experience"
	DimLocation   Dimension = "location"
	DimSalary     Dimension = "salary"
	DimLevel      Dimension = "level"
)

// AllDimensions lists every dimension in a stable order.
var AllDimensions = []Dimension{DimSkills, DimExperience, DimLocation, DimSalary, DimLevel}

// Score is the multi-dimensional relevance of one job for one profile.
// A dimension missing from Dimensions was not computable for the pair and is
// excluded from the weighted overall, never treated as zero.
type Score struct {
	Overall    float64               `json:"overall_score"`
	Dimensions map[Dimension]float64 `json:"dimensions,omitempty"`
	Matching   []string              `json:"matching_skills,omitempty"`
	Missing    []string              `json:"missing_skills,omitempty"`
}

// NewScore returns an empty score with no defined dimensions.
func NewScore() *Score {
	return &Score{Dimensions: make(map[Dimension]float64)}
}

// Dimension returns the value of one dimension and whether it was computed.
func (s *Score) Dimension(d Dimension) (float64, bool) {
	if s == nil || s.Dimensions == nil {
		return 0, false
	}
	v, ok := s.Dimensions[d]
	return v, ok
}

// SetDimension records a computed dimension, clamped to [0, 1].
func (s *Score) SetDimension(d Dimension, v float64) {
	if s.Dimensions == nil {
		s.Dimensions = make(map[Dimension]float64)
	}
	s.Dimensions[d] = clamp01(v)
}

// Empty reports whether no dimension could be computed.
func (s *Score) Empty() bool {
	return s == nil || len(s.Dimensions) == 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// mergeSkillSets unions string sets preserving first-seen order.
func mergeSkillSets(dst []string, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range src {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
