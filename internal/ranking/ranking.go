package ranking

import (
	"sort"
	"time"

	"github.com/dkoval/jobscout/internal/filtering"
	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/relevance"
)

// Match pairs one job with its relevance score. Matches are created by the
// ranker and read-only downstream.
type Match struct {
	Job       *jobs.Job        `json:"job"`
	Score     *relevance.Score `json:"relevance_score"`
	CreatedAt time.Time        `json:"created_at"`
}

// Result is what a search returns to the persistence/API collaborators.
type Result struct {
	Matches      []*Match            `json:"matches"`
	TotalFetched int                 `json:"total_fetched"`
	TotalMatched int                 `json:"total_matched"`
	SourceErrors map[string]string   `json:"source_errors,omitempty"`
	Exclusions   map[string][]string `json:"exclusions,omitempty"`
}

// Rank sorts surviving candidates by overall score descending, breaking ties
// by posted date descending (newer first) and finally by job id ascending so
// repeated runs produce identical order. Candidates below minScore are cut,
// and the result is truncated to maxResults when positive.
func Rank(items []*filtering.Candidate, minScore float64, maxResults int) []*Match {
	now := time.Now().UTC()
	matches := make([]*Match, 0, len(items))
	for _, c := range items {
		if c.Score != nil && c.Score.Overall < minScore {
			continue
		}
		matches = append(matches, &Match{Job: c.Job, Score: c.Score, CreatedAt: now})
	}

	sort.SliceStable(matches, func(i, k int) bool {
		a, b := matches[i], matches[k]

		sa, sb := overall(a), overall(b)
		if sa != sb {
			return sa > sb
		}
		if !a.Job.PostedAt.Equal(b.Job.PostedAt) {
			return a.Job.PostedAt.After(b.Job.PostedAt)
		}
		return a.Job.ID < b.Job.ID
	})

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

func overall(m *Match) float64 {
	if m.Score == nil {
		return 0
	}
	return m.Score.Overall
}
