package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Level is the seniority level of a posting or a candidate preference.
type Level string

const (
	LevelEntry     Level = "entry"
	LevelJunior    Level = "junior"
	LevelMid       Level = "mid"
	LevelSenior    Level = "senior"
	LevelLead      Level = "lead"
	LevelExecutive Level = "executive"
)

// levelOrder maps each known level to its position on the seniority ladder.
var levelOrder = map[Level]int{
	LevelEntry:     0,
	LevelJunior:    1,
	LevelMid:       2,
	LevelSenior:    3,
	LevelLead:      4,
	LevelExecutive: 5,
}

// Index returns the position of the level on the seniority ladder and whether
// the level is a known one.
func (l Level) Index() (int, bool) {
	idx, ok := levelOrder[Level(strings.ToLower(strings.TrimSpace(string(l))))]
	return idx, ok
}

// Distance returns the absolute ladder distance between two levels. The second
// return value is false when either level is unknown.
func (l Level) Distance(other Level) (int, bool) {
	a, okA := l.Index()
	b, okB := other.Index()
	if !okA || !okB {
		return 0, false
	}
	if a > b {
		return a - b, true
	}
	return b - a, true
}

// Location describes where a job is based or where a candidate wants to work.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Remote  bool   `json:"remote,omitempty"`
}

func (l Location) String() string {
	if l.Remote {
		return "Remote"
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.State, l.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Salary is a yearly salary range. Zero bounds mean the bound is not stated.
type Salary struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// HasRange reports whether at least one bound is stated.
func (s Salary) HasRange() bool {
	return s.Min > 0 || s.Max > 0
}

// Bounds returns the effective low and high bound, filling a missing side
// with the stated one.
func (s Salary) Bounds() (float64, float64) {
	lo, hi := s.Min, s.Max
	if lo == 0 {
		lo = hi
	}
	if hi == 0 {
		hi = lo
	}
	return lo, hi
}

// Job is a single posting as it arrives from a fetcher. Jobs are immutable
// once fetched within one search run.
type Job struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Company            string    `json:"company"`
	Description        string    `json:"description,omitempty"`
	Location           Location  `json:"location"`
	RequiredSkills     []string  `json:"required_skills,omitempty"`
	MinYearsExperience float64   `json:"min_years_experience,omitempty"`
	Salary             Salary    `json:"salary,omitempty"`
	Level              Level     `json:"level,omitempty"`
	URL                string    `json:"url,omitempty"`
	Source             string    `json:"source,omitempty"`
	PostedAt           time.Time `json:"posted_at,omitzero"`
}

// Signature returns the content-derived dedup key: normalized title, company
// and location. The same posting arriving from two sources with different ids
// produces the same signature.
func (j *Job) Signature() string {
	return Normalize(j.Title) + "|" + Normalize(j.Company) + "|" + Normalize(j.Location.String())
}

// Normalize lower-cases, trims and collapses inner whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Jobs is an ordered collection of postings.
type Jobs struct {
	Items []*Job `json:"items"`
}

func (j *Jobs) Len() int {
	if j == nil {
		return 0
	}
	return len(j.Items)
}

func (j *Jobs) Append(items ...*Job) {
	j.Items = append(j.Items, items...)
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// DumpToTmpFile writes the collection as indented JSON to a temporary file
// and returns its name.
func (j *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups postings by company for human-readable output.
func (j *Jobs) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range j.Items {
		entry := map[string]string{
			"title":    job.Title,
			"location": job.Location.String(),
			"url":      job.URL,
			"source":   job.Source,
		}
		if job.Salary.HasRange() {
			entry["salary"] = fmt.Sprintf("%.0f-%.0f %s", job.Salary.Min, job.Salary.Max, job.Salary.Currency)
		}
		report[job.Company] = append(report[job.Company], entry)
	}
	return report
}
