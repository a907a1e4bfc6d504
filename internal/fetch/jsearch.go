package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/dkoval/jobscout/internal/jobs"
)

const (
	jsearchAPIURL  = "https://jsearch.p.rapidapi.com/search"
	jsearchHost    = "jsearch.p.rapidapi.com"
	resultsPerPage = 10
	maxPages       = 5
)

// JSearchFetcher pulls real postings from the JSearch aggregator on RapidAPI.
type JSearchFetcher struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewJSearchFetcher(apiKey string, logger *zap.Logger) *JSearchFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSearchFetcher{
		apiKey: apiKey,
		apiURL: jsearchAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (f *JSearchFetcher) Name() string { return "jsearch" }

func (f *JSearchFetcher) Fetch(ctx context.Context, q Query) ([]*jobs.Job, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if strings.TrimSpace(f.apiKey) == "" {
		return nil, fmt.Errorf("jsearch api key is not configured")
	}

	search := text
	if q.Location != "" {
		search += " in " + strings.TrimSpace(q.Location)
	}

	pages := (q.MaxResults + resultsPerPage - 1) / resultsPerPage
	if pages > maxPages {
		pages = maxPages
	}
	if pages < 1 {
		pages = 1
	}

	params := url.Values{}
	params.Set("query", search)
	params.Set("page", "1")
	params.Set("num_pages", strconv.Itoa(pages))
	if q.RemoteOnly {
		params.Set("remote_jobs_only", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("X-RapidAPI-Key", f.apiKey)
	req.Header.Set("X-RapidAPI-Host", jsearchHost)

	f.logger.Debug("jsearch request", zap.String("query", search), zap.Int("num_pages", pages))

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var payload struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding jsearch response: %w", err)
	}

	out := make([]*jobs.Job, 0, len(payload.Data))
	for _, raw := range payload.Data {
		job, err := parseJSearchJob(raw)
		if err != nil {
			f.logger.Debug("skipping unparsable jsearch result", zap.Error(err))
			continue
		}
		out = append(out, job)
		if q.MaxResults > 0 && len(out) >= q.MaxResults {
			break
		}
	}
	return out, nil
}

// jsearchJob mirrors the fields of one JSearch API result we consume.
type jsearchJob struct {
	JobID          string   `mapstructure:"job_id"`
	Title          string   `mapstructure:"job_title"`
	Employer       string   `mapstructure:"employer_name"`
	Description    string   `mapstructure:"job_description"`
	City           string   `mapstructure:"job_city"`
	State          string   `mapstructure:"job_state"`
	Country        string   `mapstructure:"job_country"`
	IsRemote       bool     `mapstructure:"job_is_remote"`
	ApplyLink      string   `mapstructure:"job_apply_link"`
	RequiredSkills []string `mapstructure:"job_required_skills"`
	MinSalary      float64  `mapstructure:"job_min_salary"`
	MaxSalary      float64  `mapstructure:"job_max_salary"`
	SalaryCurrency string   `mapstructure:"job_salary_currency"`
	PostedAt       string   `mapstructure:"job_posted_at_datetime_utc"`
	RequiredExp    struct {
		Months float64 `mapstructure:"required_experience_in_months"`
	} `mapstructure:"job_required_experience"`
}

func parseJSearchJob(raw map[string]any) (*jobs.Job, error) {
	var item jsearchJob
	cfg := &mapstructure.DecoderConfig{
		Result:           &item,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	if strings.TrimSpace(item.Title) == "" {
		return nil, fmt.Errorf("result has no title")
	}

	external := item.JobID
	if external == "" {
		external = item.Title + "@" + item.Employer
	}

	job := &jobs.Job{
		ID:          JobID("jsearch", external),
		Title:       item.Title,
		Company:     item.Employer,
		Description: item.Description,
		Location: jobs.Location{
			City:    item.City,
			State:   item.State,
			Country: item.Country,
			Remote:  item.IsRemote,
		},
		RequiredSkills:     item.RequiredSkills,
		MinYearsExperience: item.RequiredExp.Months / 12,
		Salary: jobs.Salary{
			Min:      item.MinSalary,
			Max:      item.MaxSalary,
			Currency: item.SalaryCurrency,
		},
		URL:    item.ApplyLink,
		Source: "jsearch",
	}

	if ts, err := time.Parse(time.RFC3339, item.PostedAt); err == nil {
		job.PostedAt = ts
	}

	return job, nil
}
