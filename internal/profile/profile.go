package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dkoval/jobscout/internal/jobs"
)

// RemotePreference expresses how the candidate feels about remote work.
type RemotePreference string

const (
	RemoteRequired      RemotePreference = "required"
	RemotePreferred     RemotePreference = "preferred"
	RemoteFlexible      RemotePreference = "flexible"
	RemoteNotInterested RemotePreference = "not_interested"
)

// AcceptsRemote reports whether a remote posting is acceptable at all.
func (r RemotePreference) AcceptsRemote() bool {
	return r != RemoteNotInterested
}

// WorkExperience is one entry of the candidate's work history.
type WorkExperience struct {
	Company  string    `json:"company"`
	Position string    `json:"position"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end,omitzero"`
	Current  bool      `json:"current,omitempty"`
	Skills   []string  `json:"skills,omitempty"`
}

// Education is one entry of the candidate's educational background.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
}

// Profile is a fully-populated candidate profile. The pipeline never parses
// resume files itself; profiles arrive already structured.
type Profile struct {
	ID                 string           `json:"id,omitempty"`
	FullName           string           `json:"full_name,omitempty"`
	Email              string           `json:"email,omitempty"`
	Summary            string           `json:"summary,omitempty"`
	Skills             []string         `json:"skills,omitempty"`
	WorkExperience     []WorkExperience `json:"work_experience,omitempty"`
	Education          []Education      `json:"education,omitempty"`
	Certifications     []string         `json:"certifications,omitempty"`
	PreferredLocations []jobs.Location  `json:"preferred_locations,omitempty"`
	PreferredSalaryMin float64          `json:"preferred_salary_min,omitempty"`
	PreferredSalaryMax float64          `json:"preferred_salary_max,omitempty"`
	PreferredLevels    []jobs.Level     `json:"preferred_job_levels,omitempty"`
	RemotePreference   RemotePreference `json:"remote_preference,omitempty"`
}

// Validate checks the invariants a collaborator-supplied profile must hold.
func (p *Profile) Validate() error {
	if p.PreferredSalaryMin > 0 && p.PreferredSalaryMax > 0 && p.PreferredSalaryMin > p.PreferredSalaryMax {
		return fmt.Errorf("preferred salary minimum %.0f exceeds maximum %.0f", p.PreferredSalaryMin, p.PreferredSalaryMax)
	}
	for _, exp := range p.WorkExperience {
		if !exp.End.IsZero() && exp.End.Before(exp.Start) {
			return fmt.Errorf("work experience at %s ends before it starts", exp.Company)
		}
	}
	return nil
}

// YearsOfExperience derives the candidate's total years of experience by
// summing work history date ranges. Overlapping ranges are merged first so
// parallel positions count once.
func (p *Profile) YearsOfExperience() float64 {
	return p.yearsOfExperienceAt(time.Now())
}

func (p *Profile) yearsOfExperienceAt(now time.Time) float64 {
	type span struct{ start, end time.Time }

	spans := make([]span, 0, len(p.WorkExperience))
	for _, exp := range p.WorkExperience {
		if exp.Start.IsZero() {
			continue
		}
		end := exp.End
		if exp.Current || end.IsZero() {
			end = now
		}
		if end.After(exp.Start) {
			spans = append(spans, span{start: exp.Start, end: end})
		}
	}
	if len(spans) == 0 {
		return 0
	}

	sort.Slice(spans, func(i, k int) bool { return spans[i].start.Before(spans[k].start) })

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if !s.start.After(last.end) {
			if s.end.After(last.end) {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	var total time.Duration
	for _, s := range merged {
		total += s.end.Sub(s.start)
	}

	const yearHours = 365.25 * 24
	return total.Hours() / yearHours
}

// Load reads a profile from a JSON file and validates it.
func Load(path string) (*Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var p Profile
	if err := json.NewDecoder(file).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	return &p, nil
}
