package fetch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/dkoval/jobscout/internal/jobs"
)

// DemoFetcher serves a deterministic built-in catalog of postings so the full
// pipeline can run end to end without network access or API keys.
type DemoFetcher struct {
	now func() time.Time
}

func NewDemoFetcher() *DemoFetcher {
	return &DemoFetcher{now: time.Now}
}

func (f *DemoFetcher) Name() string { return "demo" }

// Fetch returns catalog postings whose title, description or skills mention
// the query text. An empty query returns the whole catalog.
func (f *DemoFetcher) Fetch(_ context.Context, q Query) ([]*jobs.Job, error) {
	text := jobs.Normalize(q.Text)
	now := f.now().UTC()

	var out []*jobs.Job
	for i, tpl := range demoCatalog {
		if text != "" && !tpl.mentions(text) {
			continue
		}
		if q.RemoteOnly && !tpl.location.Remote {
			continue
		}

		job := tpl.toJob(now.Add(-time.Duration(i*7) * time.Hour))
		out = append(out, job)
		if q.MaxResults > 0 && len(out) >= q.MaxResults {
			break
		}
	}
	return out, nil
}

type demoJob struct {
	title       string
	company     string
	description string
	location    jobs.Location
	skills      []string
	minYears    float64
	salaryMin   float64
	salaryMax   float64
	level       jobs.Level
}

func (d demoJob) mentions(text string) bool {
	blob := jobs.Normalize(d.title + " " + d.description + " " + strings.Join(d.skills, " "))
	for _, word := range strings.Fields(text) {
		if strings.Contains(blob, word) {
			return true
		}
	}
	return false
}

func (d demoJob) toJob(postedAt time.Time) *jobs.Job {
	return &jobs.Job{
		ID:                 JobID("demo", d.title+"@"+d.company),
		Title:              d.title,
		Company:            d.company,
		Description:        d.description,
		Location:           d.location,
		RequiredSkills:     d.skills,
		MinYearsExperience: d.minYears,
		Salary:             jobs.Salary{Min: d.salaryMin, Max: d.salaryMax, Currency: "USD"},
		Level:              d.level,
		Source:             "demo",
		PostedAt:           postedAt,
	}
}

// JobID derives a stable job id from the source and an external identifier.
func JobID(source, external string) string {
	sum := sha256.Sum256([]byte(source + ":" + external))
	return fmt.Sprintf("%s-%x", source, sum[:6])
}

var demoCatalog = []demoJob{
	{
		title:       "Senior Python Engineer",
		company:     "Stripe",
		description: "Design, build and maintain scalable backend services using Python. Strong experience with PostgreSQL, Redis and AWS expected.",
		location:    jobs.Location{City: "San Francisco", State: "CA", Country: "US"},
		skills:      []string{"Python", "PostgreSQL", "Redis", "AWS", "Docker"},
		minYears:    5, salaryMin: 170000, salaryMax: 230000, level: jobs.LevelSenior,
	},
	{
		title:       "Python Backend Developer",
		company:     "Shopify",
		description: "Build APIs and data pipelines with Python and Django for our commerce platform.",
		location:    jobs.Location{Remote: true},
		skills:      []string{"Python", "Django", "REST APIs", "MySQL"},
		minYears:    3, salaryMin: 120000, salaryMax: 160000, level: jobs.LevelMid,
	},
	{
		title:       "Data Engineer",
		company:     "Snowflake",
		description: "Design data pipelines with SQL, Spark and Airflow to drive analytics at scale.",
		location:    jobs.Location{City: "Seattle", State: "WA", Country: "US"},
		skills:      []string{"Python", "SQL", "Spark", "Airflow"},
		minYears:    4, salaryMin: 140000, salaryMax: 190000, level: jobs.LevelSenior,
	},
	{
		title:       "Machine Learning Engineer",
		company:     "Databricks",
		description: "Build and deploy ML models on large-scale data processing infrastructure.",
		location:    jobs.Location{Remote: true},
		skills:      []string{"Python", "PyTorch", "TensorFlow", "SQL", "Kubernetes"},
		minYears:    4, salaryMin: 160000, salaryMax: 220000, level: jobs.LevelSenior,
	},
	{
		title:       "Frontend Developer",
		company:     "Figma",
		description: "Create responsive web applications with React and TypeScript. Passion for clean code and great UX is a must.",
		location:    jobs.Location{City: "New York", State: "NY", Country: "US"},
		skills:      []string{"JavaScript", "TypeScript", "React", "HTML/CSS"},
		minYears:    2, salaryMin: 110000, salaryMax: 150000, level: jobs.LevelMid,
	},
	{
		title:       "DevOps Engineer",
		company:     "HashiCorp",
		description: "Manage cloud infrastructure and build CI/CD pipelines with Terraform and Kubernetes.",
		location:    jobs.Location{Remote: true},
		skills:      []string{"AWS", "Kubernetes", "Terraform", "Linux", "Python"},
		minYears:    3, salaryMin: 130000, salaryMax: 175000, level: jobs.LevelMid,
	},
	{
		title:       "Site Reliability Engineer",
		company:     "Datadog",
		description: "Improve system reliability for our cloud-native monitoring platform. Strong Linux and networking background required.",
		location:    jobs.Location{City: "Boston", State: "MA", Country: "US"},
		skills:      []string{"Linux", "Kubernetes", "Prometheus", "Go", "Python"},
		minYears:    5, salaryMin: 150000, salaryMax: 200000, level: jobs.LevelSenior,
	},
	{
		title:       "Junior Python Developer",
		company:     "Atlassian",
		description: "Join our platform team and grow your Python and SQL skills building internal tools.",
		location:    jobs.Location{City: "Austin", State: "TX", Country: "US"},
		skills:      []string{"Python", "SQL", "Git"},
		minYears:    1, salaryMin: 80000, salaryMax: 105000, level: jobs.LevelJunior,
	},
	{
		title:       "Backend Engineer, Payments",
		company:     "Airbnb",
		description: "Build payment microservices in Go and Python. Experience with distributed systems is a plus.",
		location:    jobs.Location{Remote: true},
		skills:      []string{"Go", "Python", "gRPC", "PostgreSQL"},
		minYears:    4, salaryMin: 155000, salaryMax: 210000, level: jobs.LevelSenior,
	},
	{
		title:       "Analytics Engineer",
		company:     "Spotify",
		description: "Create dashboards and reports with SQL, dbt and Tableau for music insights.",
		location:    jobs.Location{City: "London", Country: "UK"},
		skills:      []string{"SQL", "dbt", "Tableau", "Python"},
		minYears:    2, salaryMin: 70000, salaryMax: 95000, level: jobs.LevelMid,
	},
}
