package relevance

import (
	"math"
	"testing"
	"time"

	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/profile"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreSkillsOverlap(t *testing.T) {
	p := &profile.Profile{Skills: []string{"Python", "sql", "Docker"}}
	j := &jobs.Job{RequiredSkills: []string{"Python", "SQL", "Spark"}}

	res, ok := ScoreSkills(p, j)
	if !ok {
		t.Fatalf("expected a defined score")
	}
	if !almostEqual(res.Score, 2.0/3.0) {
		t.Fatalf("expected 2/3, got %v", res.Score)
	}
	if len(res.Matching) != 2 || res.Matching[0] != "Python" || res.Matching[1] != "SQL" {
		t.Fatalf("unexpected matching set: %v", res.Matching)
	}
	if len(res.Missing) != 1 || res.Missing[0] != "Spark" {
		t.Fatalf("unexpected missing set: %v", res.Missing)
	}
}

func TestScoreSkillsUndefinedWithoutRequirements(t *testing.T) {
	p := &profile.Profile{Skills: []string{"Go"}}
	j := &jobs.Job{RequiredSkills: nil}

	if _, ok := ScoreSkills(p, j); ok {
		t.Fatalf("a job with no required skills must be undefined, not zero")
	}
	if _, ok := ScoreSkills(p, &jobs.Job{RequiredSkills: []string{"  ", ""}}); ok {
		t.Fatalf("blank skill entries must not count as requirements")
	}
}

func TestScoreExperience(t *testing.T) {
	now := time.Now()
	tenYears := &profile.Profile{
		WorkExperience: []profile.WorkExperience{
			{Company: "Acme", Start: now.AddDate(-10, 0, 0), Current: true},
		},
	}

	if v, ok := ScoreExperience(tenYears, &jobs.Job{MinYearsExperience: 5}); !ok || v != 1.0 {
		t.Fatalf("meeting the minimum must score 1.0, got (%v, %t)", v, ok)
	}

	fiveYears := &profile.Profile{
		WorkExperience: []profile.WorkExperience{
			{Company: "Acme", Start: now.AddDate(-5, 0, 0), Current: true},
		},
	}
	v, ok := ScoreExperience(fiveYears, &jobs.Job{MinYearsExperience: 10})
	if !ok || math.Abs(v-0.5) > 0.01 {
		t.Fatalf("expected about 0.5, got (%v, %t)", v, ok)
	}

	if _, ok := ScoreExperience(tenYears, &jobs.Job{}); ok {
		t.Fatalf("a job with no stated minimum must be undefined")
	}
}

func TestScoreLocation(t *testing.T) {
	berlin := jobs.Location{City: "Berlin", Country: "DE"}
	munich := jobs.Location{City: "Munich", Country: "DE"}
	paris := jobs.Location{City: "Paris", Country: "FR"}

	p := &profile.Profile{
		PreferredLocations: []jobs.Location{berlin},
		RemotePreference:   profile.RemotePreferred,
	}

	if v, ok := ScoreLocation(p, &jobs.Job{Location: jobs.Location{Remote: true}}); !ok || v != 1.0 {
		t.Fatalf("accepted remote job must score 1.0, got (%v, %t)", v, ok)
	}
	if v, ok := ScoreLocation(p, &jobs.Job{Location: berlin}); !ok || v != 1.0 {
		t.Fatalf("exact city match must score 1.0, got (%v, %t)", v, ok)
	}
	if v, ok := ScoreLocation(p, &jobs.Job{Location: munich}); !ok || v != 0.5 {
		t.Fatalf("country-only match must score 0.5, got (%v, %t)", v, ok)
	}
	if v, ok := ScoreLocation(p, &jobs.Job{Location: paris}); !ok || v != 0.0 {
		t.Fatalf("no overlap must score 0.0, got (%v, %t)", v, ok)
	}

	noPrefs := &profile.Profile{RemotePreference: profile.RemoteNotInterested}
	if _, ok := ScoreLocation(noPrefs, &jobs.Job{Location: berlin}); ok {
		t.Fatalf("no preferences and an onsite job must be undefined")
	}
	if v, ok := ScoreLocation(noPrefs, &jobs.Job{Location: jobs.Location{Remote: true}}); !ok || v != 0.0 {
		t.Fatalf("unwanted remote job must score 0.0, got (%v, %t)", v, ok)
	}
}

func TestScoreSalary(t *testing.T) {
	p := &profile.Profile{PreferredSalaryMin: 100000, PreferredSalaryMax: 150000}

	if v, ok := ScoreSalary(p, &jobs.Job{Salary: jobs.Salary{Min: 90000, Max: 200000}}); !ok || v != 1.0 {
		t.Fatalf("a job range containing the request must score 1.0, got (%v, %t)", v, ok)
	}
	if v, ok := ScoreSalary(p, &jobs.Job{Salary: jobs.Salary{Min: 50000, Max: 80000}}); !ok || v != 0.0 {
		t.Fatalf("disjoint ranges must score 0.0, got (%v, %t)", v, ok)
	}

	partial := &profile.Profile{PreferredSalaryMin: 150000, PreferredSalaryMax: 180000}
	v, ok := ScoreSalary(partial, &jobs.Job{Salary: jobs.Salary{Min: 160000, Max: 200000}})
	if !ok || !almostEqual(v, 2.0/3.0) {
		t.Fatalf("expected 2/3 overlap, got (%v, %t)", v, ok)
	}

	if _, ok := ScoreSalary(p, &jobs.Job{}); ok {
		t.Fatalf("a job with no salary must be undefined")
	}
	if _, ok := ScoreSalary(&profile.Profile{}, &jobs.Job{Salary: jobs.Salary{Min: 100000}}); ok {
		t.Fatalf("a candidate with no salary preference must be undefined")
	}
}

func TestScoreSalaryPointRequest(t *testing.T) {
	p := &profile.Profile{PreferredSalaryMin: 120000}
	if v, ok := ScoreSalary(p, &jobs.Job{Salary: jobs.Salary{Min: 100000, Max: 150000}}); !ok || v != 1.0 {
		t.Fatalf("point request inside the job range must score 1.0, got (%v, %t)", v, ok)
	}
}

func TestScoreLevel(t *testing.T) {
	p := &profile.Profile{PreferredLevels: []jobs.Level{jobs.LevelSenior}}

	if v, ok := ScoreLevel(p, &jobs.Job{Level: jobs.LevelSenior}); !ok || v != 1.0 {
		t.Fatalf("preferred level must score 1.0, got (%v, %t)", v, ok)
	}
	if v, ok := ScoreLevel(p, &jobs.Job{Level: jobs.LevelMid}); !ok || v != 0.5 {
		t.Fatalf("adjacent level must score 0.5, got (%v, %t)", v, ok)
	}
	if v, ok := ScoreLevel(p, &jobs.Job{Level: jobs.LevelEntry}); !ok || v != 0.0 {
		t.Fatalf("distant level must score 0.0, got (%v, %t)", v, ok)
	}

	if _, ok := ScoreLevel(p, &jobs.Job{}); ok {
		t.Fatalf("a job with no level must be undefined")
	}
	if _, ok := ScoreLevel(&profile.Profile{}, &jobs.Job{Level: jobs.LevelMid}); ok {
		t.Fatalf("a candidate with no level preference must be undefined")
	}
}
