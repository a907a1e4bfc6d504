package filtering

import (
	"context"
	"strings"
	"testing"

	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/relevance"
)

func newTestSet(list ...*jobs.Job) *Set {
	return NewSet(list)
}

func ids(set *Set) []string {
	out := make([]string, 0, set.Len())
	for _, c := range set.Items {
		out = append(out, c.Job.ID)
	}
	return out
}

func TestDedupFirstOccurrenceWins(t *testing.T) {
	set := newTestSet(
		&jobs.Job{ID: "a-1", Title: "Go Engineer", Company: "Acme", Location: jobs.Location{City: "Berlin"}},
		&jobs.Job{ID: "b-7", Title: "go engineer", Company: "ACME", Location: jobs.Location{City: "berlin"}},
		&jobs.Job{ID: "a-2", Title: "SRE", Company: "Acme", Location: jobs.Location{City: "Berlin"}},
	)

	out, step, err := NewDedup().Apply(context.Background(), Deps{}, set)
	if err != nil {
		t.Fatal(err)
	}
	if step.Dropped != 1 || out.Len() != 2 {
		t.Fatalf("expected 1 duplicate dropped, got step %+v", step)
	}
	got := ids(out)
	if got[0] != "a-1" || got[1] != "a-2" {
		t.Fatalf("first occurrence must win, got %v", got)
	}

	reasons := out.Reasons["b-7"]
	if len(reasons) != 1 || !strings.HasPrefix(reasons[0], "duplicate of ") {
		t.Fatalf("unexpected reasons: %v", reasons)
	}

	// Running again on the already-unique set drops nothing.
	out2, step2, err := NewDedup().Apply(context.Background(), Deps{}, out)
	if err != nil {
		t.Fatal(err)
	}
	if step2.Dropped != 0 || out2.Len() != 2 {
		t.Fatalf("dedup must be idempotent, got step %+v", step2)
	}
}

func TestSalaryFilterBounds(t *testing.T) {
	f := NewSalary()
	if err := f.Validate(&Config{MinSalary: 100000, MaxSalary: 150000}); err != nil {
		t.Fatal(err)
	}

	set := newTestSet(
		&jobs.Job{ID: "too-high", Salary: jobs.Salary{Min: 160000, Max: 180000}},
		&jobs.Job{ID: "too-low", Salary: jobs.Salary{Min: 50000, Max: 80000}},
		&jobs.Job{ID: "overlaps", Salary: jobs.Salary{Min: 90000, Max: 120000}},
		&jobs.Job{ID: "unstated"},
	)

	out, step, err := f.Apply(context.Background(), Deps{}, set)
	if err != nil {
		t.Fatal(err)
	}
	if step.Dropped != 2 {
		t.Fatalf("expected 2 dropped, got %+v", step)
	}
	got := ids(out)
	if len(got) != 2 || got[0] != "overlaps" || got[1] != "unstated" {
		t.Fatalf("unexpected survivors: %v", got)
	}
	if len(out.Reasons["too-high"]) != 1 || len(out.Reasons["too-low"]) != 1 {
		t.Fatalf("excluded jobs must carry reasons: %v", out.Reasons)
	}
	if _, ok := out.Reasons["unstated"]; ok {
		t.Fatalf("a job with no stated salary must pass without a reason entry")
	}
}

func TestSalaryFilterRejectsInvertedBounds(t *testing.T) {
	if err := NewSalary().Validate(&Config{MinSalary: 200000, MaxSalary: 100000}); err == nil {
		t.Fatalf("expected a validation error")
	}
}

func TestLocationFilter(t *testing.T) {
	f := NewLocation()
	if err := f.Validate(&Config{AllowedLocations: []string{"Berlin"}, AllowRemote: true}); err != nil {
		t.Fatal(err)
	}

	set := newTestSet(
		&jobs.Job{ID: "berlin", Location: jobs.Location{City: "Berlin", Country: "DE"}},
		&jobs.Job{ID: "remote", Location: jobs.Location{Remote: true}},
		&jobs.Job{ID: "paris", Location: jobs.Location{City: "Paris", Country: "FR"}},
	)

	out, step, err := f.Apply(context.Background(), Deps{}, set)
	if err != nil {
		t.Fatal(err)
	}
	if step.Dropped != 1 {
		t.Fatalf("expected only paris dropped, got %+v", step)
	}
	if reasons := out.Reasons["paris"]; len(reasons) != 1 || !strings.Contains(reasons[0], "not in allowed list") {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
}

func TestLocationFilterEmptyListIsNoop(t *testing.T) {
	f := NewLocation()
	if err := f.Validate(&Config{}); err != nil {
		t.Fatal(err)
	}

	set := newTestSet(&jobs.Job{ID: "anywhere", Location: jobs.Location{City: "Oslo"}})
	out, step, err := f.Apply(context.Background(), Deps{}, set)
	if err != nil {
		t.Fatal(err)
	}
	if step.Dropped != 0 || out.Len() != 1 {
		t.Fatalf("empty allow-list must not drop anything, got %+v", step)
	}
}

func TestKeywordFilter(t *testing.T) {
	f := NewKeyword()
	if err := f.Validate(&Config{ExcludedKeywords: []string{"Crypto", "unpaid"}}); err != nil {
		t.Fatal(err)
	}

	set := newTestSet(
		&jobs.Job{ID: "ok", Title: "Go Engineer", Description: "Backend services"},
		&jobs.Job{ID: "bad-title", Title: "Crypto Trading Engineer"},
		&jobs.Job{ID: "bad-desc", Title: "Intern", Description: "This is an UNPAID internship"},
	)

	out, step, err := f.Apply(context.Background(), Deps{}, set)
	if err != nil {
		t.Fatal(err)
	}
	if step.Dropped != 2 || out.Len() != 1 || out.Items[0].Job.ID != "ok" {
		t.Fatalf("unexpected result: %+v survivors %v", step, ids(out))
	}
	if reasons := out.Reasons["bad-title"]; len(reasons) != 1 || reasons[0] != "contains excluded keyword: crypto" {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
}

func TestMinScoreFilter(t *testing.T) {
	f := NewMinScore()
	if err := f.Validate(&Config{MinScore: 0.5}); err != nil {
		t.Fatal(err)
	}

	set := newTestSet(
		&jobs.Job{ID: "good"},
		&jobs.Job{ID: "bad"},
		&jobs.Job{ID: "unscored"},
	)
	set.Items[0].Score = &relevance.Score{Overall: 0.7}
	set.Items[1].Score = &relevance.Score{Overall: 0.3}

	out, step, err := f.Apply(context.Background(), Deps{}, set)
	if err != nil {
		t.Fatal(err)
	}
	if step.Dropped != 1 {
		t.Fatalf("expected 1 dropped, got %+v", step)
	}
	got := ids(out)
	if len(got) != 2 || got[0] != "good" || got[1] != "unscored" {
		t.Fatalf("unscored candidates must pass through, got %v", got)
	}
	if reasons := out.Reasons["bad"]; len(reasons) != 1 || !strings.Contains(reasons[0], "below minimum") {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
}

func TestRunRecordsSingleReasonPerJob(t *testing.T) {
	// This job violates both the salary bound and the keyword list. Only the
	// first filter in the chain gets to reject it.
	cfg := &Config{MaxSalary: 100000, ExcludedKeywords: []string{"crypto"}}
	set := newTestSet(
		&jobs.Job{ID: "doomed", Title: "Crypto Engineer", Salary: jobs.Salary{Min: 200000, Max: 250000}},
		&jobs.Job{ID: "fine", Title: "Go Engineer"},
	)

	out, err := Run(context.Background(), cfg, Deps{}, []Filter{NewSalary(), NewKeyword()}, set)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 1 || out.Items[0].Job.ID != "fine" {
		t.Fatalf("unexpected survivors: %v", ids(out))
	}
	reasons := out.Reasons["doomed"]
	if len(reasons) != 1 || !strings.Contains(reasons[0], "above maximum") {
		t.Fatalf("expected exactly one salary reason, got %v", reasons)
	}
}

func TestRunValidatesBeforeApplying(t *testing.T) {
	cfg := &Config{MinSalary: 200000, MaxSalary: 100000}
	set := newTestSet(&jobs.Job{ID: "a"})

	if _, err := Run(context.Background(), cfg, Deps{}, []Filter{NewKeyword(), NewSalary()}, set); err == nil {
		t.Fatalf("a misconfigured chain must fail before touching the set")
	}
}

func TestAnyFilterUnionsSurvivors(t *testing.T) {
	cfg := &Config{MaxSalary: 100000, ExcludedKeywords: []string{"crypto"}}

	set := newTestSet(
		// Passes keyword, fails salary: survives the OR.
		&jobs.Job{ID: "pricey", Title: "Go Engineer", Salary: jobs.Salary{Min: 150000, Max: 150000}},
		// Passes salary, fails keyword: survives the OR.
		&jobs.Job{ID: "crypto-cheap", Title: "Crypto Engineer", Salary: jobs.Salary{Min: 50000, Max: 80000}},
		// Fails both: rejected with a combined reason.
		&jobs.Job{ID: "crypto-pricey", Title: "Crypto Engineer", Salary: jobs.Salary{Min: 150000, Max: 150000}},
	)

	out, err := Run(context.Background(), cfg, Deps{}, []Filter{NewAny(NewSalary(), NewKeyword())}, set)
	if err != nil {
		t.Fatal(err)
	}

	got := ids(out)
	if len(got) != 2 || got[0] != "pricey" || got[1] != "crypto-cheap" {
		t.Fatalf("unexpected survivors: %v", got)
	}

	reasons := out.Reasons["crypto-pricey"]
	if len(reasons) != 1 {
		t.Fatalf("expected one combined reason, got %v", reasons)
	}
	if !strings.Contains(reasons[0], "rejected by all of any(salary,keyword)") {
		t.Fatalf("unexpected reason: %q", reasons[0])
	}
	if !strings.Contains(reasons[0], "above maximum") || !strings.Contains(reasons[0], "excluded keyword") {
		t.Fatalf("combined reason must carry each child's explanation: %q", reasons[0])
	}
}

func TestDisabledFilterIsSkipped(t *testing.T) {
	f := NewAny(NewSalary())
	f.Disable("not needed")
	if f.IsEnabled() {
		t.Fatalf("filter must report disabled")
	}

	cfg := &Config{MaxSalary: 1} // would reject everything if applied
	set := newTestSet(&jobs.Job{ID: "a", Salary: jobs.Salary{Min: 100000, Max: 100000}})

	out, err := Run(context.Background(), cfg, Deps{}, []Filter{f}, set)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 1 {
		t.Fatalf("disabled filter must not drop candidates")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (&Config{MinScore: 1.5}).Validate(); err == nil {
		t.Fatalf("out-of-range min score must be rejected")
	}
	if err := (&Config{MinSalary: 2, MaxSalary: 1}).Validate(); err == nil {
		t.Fatalf("inverted salary bounds must be rejected")
	}
	if err := (&Config{MinSalary: 1, MaxSalary: 2, MinScore: 0.5}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
