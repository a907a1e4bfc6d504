package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkoval/jobscout/internal/fetch"
	"github.com/dkoval/jobscout/internal/filtering"
	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/profile"
	"github.com/dkoval/jobscout/internal/ranking"
	"github.com/dkoval/jobscout/internal/relevance"
)

type stubFetcher struct {
	name   string
	list   []*jobs.Job
	err    error
	called bool
}

func (f *stubFetcher) Name() string { return f.name }

func (f *stubFetcher) Fetch(context.Context, fetch.Query) ([]*jobs.Job, error) {
	f.called = true
	return f.list, f.err
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		FullName:         "Jane Doe",
		Skills:           []string{"Python", "SQL"},
		RemotePreference: profile.RemotePreferred,
	}
}

func TestSearchRequiresProfile(t *testing.T) {
	f := &stubFetcher{name: "stub"}
	a := New([]fetch.Fetcher{f}, relevance.NewCompositeStrategy(), DefaultFilters, Config{}, nil)

	_, err := a.Search(context.Background(), nil, fetch.Query{})
	if !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
	if f.called {
		t.Fatalf("no fetching may happen without a profile")
	}
}

func TestSearchRejectsInvalidConfigBeforeFetching(t *testing.T) {
	f := &stubFetcher{name: "stub"}
	a := New([]fetch.Fetcher{f}, relevance.NewCompositeStrategy(), DefaultFilters, Config{MinScore: 2}, nil)

	_, err := a.Search(context.Background(), testProfile(), fetch.Query{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if f.called {
		t.Fatalf("no fetching may happen with an invalid configuration")
	}
}

func TestSearchRejectsInvalidProfile(t *testing.T) {
	f := &stubFetcher{name: "stub"}
	a := New([]fetch.Fetcher{f}, relevance.NewCompositeStrategy(), DefaultFilters, Config{}, nil)

	bad := testProfile()
	bad.PreferredSalaryMin = 200000
	bad.PreferredSalaryMax = 100000

	_, err := a.Search(context.Background(), bad, fetch.Query{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if f.called {
		t.Fatalf("no fetching may happen with an invalid profile")
	}
}

func TestSearchEndToEnd(t *testing.T) {
	posted := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	good := &stubFetcher{name: "good", list: []*jobs.Job{
		{
			ID: "good-1", Title: "Python Engineer", Company: "Acme",
			RequiredSkills: []string{"Python", "SQL"},
			Location:       jobs.Location{Remote: true},
			PostedAt:       posted,
		},
		{
			ID: "good-2", Title: "Java Engineer", Company: "Globex",
			RequiredSkills: []string{"Java"},
			Location:       jobs.Location{Remote: true},
			PostedAt:       posted,
		},
		// Same posting as good-1 under a different id.
		{
			ID: "good-3", Title: "python engineer", Company: "ACME",
			RequiredSkills: []string{"Python"},
			Location:       jobs.Location{Remote: true},
			PostedAt:       posted,
		},
	}}
	broken := &stubFetcher{name: "broken", err: errors.New("rate limited")}

	cfg := Config{
		MinScore:   0.5,
		MaxResults: 10,
		Filters:    filtering.Config{MinScore: 0.5},
	}
	strategy := relevance.NewHybrid([]relevance.Strategy{relevance.NewCompositeStrategy()}, relevance.DefaultWeights(), nil)
	a := New([]fetch.Fetcher{good, broken}, strategy, DefaultFilters, cfg, nil)

	result, err := a.Search(context.Background(), testProfile(), fetch.Query{Text: "engineer"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if result.TotalFetched != 3 {
		t.Fatalf("expected 3 fetched, got %d", result.TotalFetched)
	}
	if result.TotalMatched != 1 || result.Matches[0].Job.ID != "good-1" {
		t.Fatalf("expected only the python job to survive, got %+v", result.Matches)
	}
	if result.Matches[0].Score == nil || result.Matches[0].Score.Overall != 1.0 {
		t.Fatalf("unexpected score: %+v", result.Matches[0].Score)
	}

	// The duplicate went out with a dedup reason, never scored.
	if reasons := result.Exclusions["good-3"]; len(reasons) != 1 || !strings.HasPrefix(reasons[0], "duplicate of ") {
		t.Fatalf("unexpected dedup reasons: %v", result.Exclusions)
	}
	// The Java job fell below the score threshold.
	if reasons := result.Exclusions["good-2"]; len(reasons) != 1 || !strings.Contains(reasons[0], "below minimum") {
		t.Fatalf("unexpected score reasons: %v", result.Exclusions)
	}

	if result.SourceErrors["broken"] != "rate limited" {
		t.Fatalf("failing source must be reported: %v", result.SourceErrors)
	}
}

type staticFetcher struct {
	list []*jobs.Job
}

func (f staticFetcher) Name() string { return "static" }

func (f staticFetcher) Fetch(context.Context, fetch.Query) ([]*jobs.Job, error) {
	return f.list, nil
}

// Every search builds its own filter chain, so parallel searches over one
// agent must not interfere with each other's keyword and score state.
func TestSearchConcurrent(t *testing.T) {
	posted := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	f := staticFetcher{list: []*jobs.Job{
		{
			ID: "py", Title: "Python Engineer", Company: "Acme",
			RequiredSkills: []string{"Python", "SQL"},
			Location:       jobs.Location{Remote: true},
			PostedAt:       posted,
		},
		{
			ID: "intern", Title: "Python Intern", Company: "Globex",
			RequiredSkills: []string{"Python"},
			Location:       jobs.Location{Remote: true},
			PostedAt:       posted,
		},
		{
			ID: "java", Title: "Java Engineer", Company: "Initech",
			RequiredSkills: []string{"Java"},
			Location:       jobs.Location{Remote: true},
			PostedAt:       posted,
		},
	}}

	cfg := Config{
		MinScore:   0.5,
		MaxResults: 10,
		Filters: filtering.Config{
			ExcludedKeywords: []string{"intern"},
			MinScore:         0.5,
		},
	}
	strategy := relevance.NewHybrid([]relevance.Strategy{relevance.NewCompositeStrategy()}, relevance.DefaultWeights(), nil)
	a := New([]fetch.Fetcher{f}, strategy, DefaultFilters, cfg, nil)

	const searches = 8
	var wg sync.WaitGroup
	errs := make([]error, searches)
	results := make([]*ranking.Result, searches)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = a.Search(context.Background(), testProfile(), fetch.Query{})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("search %d failed: %v", i, err)
		}
		r := results[i]
		if r.TotalMatched != 1 || r.Matches[0].Job.ID != "py" {
			t.Fatalf("search %d: expected only the python job to survive, got %+v", i, r.Matches)
		}
		if reasons := r.Exclusions["intern"]; len(reasons) != 1 || !strings.Contains(reasons[0], "excluded keyword") {
			t.Fatalf("search %d: keyword exclusion missing: %v", i, r.Exclusions)
		}
		if reasons := r.Exclusions["java"]; len(reasons) != 1 || !strings.Contains(reasons[0], "below minimum") {
			t.Fatalf("search %d: score exclusion missing: %v", i, r.Exclusions)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{MinScore: 0.5, MaxResults: 10, Weights: relevance.DefaultWeights()}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []Config{
		{MinScore: -0.1},
		{MinScore: 1.1},
		{MaxResults: -1},
		{Weights: relevance.Weights{"vibes": 1}},
		{Filters: filtering.Config{MinSalary: 2, MaxSalary: 1}},
	}
	for i, cfg := range tests {
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}
