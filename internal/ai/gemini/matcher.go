package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/dkoval/jobscout/internal/ai"
	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/logger"
	"github.com/dkoval/jobscout/internal/profile"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Matcher implements ai.Matcher on top of a Gemini content generator.
type Matcher struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewMatcher(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

// Evaluate sends a profile summary and the job posting to the model and
// parses its relevance estimate.
func (m *Matcher) Evaluate(ctx context.Context, p *profile.Profile, j *jobs.Job) (*ai.Assessment, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if j == nil {
		return nil, fmt.Errorf("job is required")
	}

	profilePayload := map[string]any{
		"summary":              p.Summary,
		"skills":               p.Skills,
		"certifications":       p.Certifications,
		"years_of_experience":  math.Round(p.YearsOfExperience()*10) / 10,
		"preferred_job_levels": p.PreferredLevels,
		"remote_preference":    p.RemotePreference,
	}
	profileJSON, err := json.MarshalIndent(profilePayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}

	prompt := buildPrompt(string(profileJSON), string(jobJSON))

	m.logger.Debug("gemini generate content request",
		zap.String("job_id", j.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response",
		zap.String("job_id", j.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(profileJSON, jobJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{PROFILE_JSON}}\n\nJob:\n{{JOB_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{PROFILE_JSON}}", profileJSON)
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", jobJSON)
	return prompt
}

func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	assessment := &ai.Assessment{
		Score:          clamp(coerceFloat(data["score"])),
		MatchingSkills: coerceStrings(data["matching_skills"]),
		MissingSkills:  coerceStrings(data["missing_skills"]),
		Reason:         coerceString(data["reason"]),
	}

	if dims, ok := data["dimensions"].(map[string]any); ok {
		assessment.Dimensions = make(map[string]float64, len(dims))
		for name, v := range dims {
			f := coerceFloat(v)
			if math.IsNaN(f) {
				continue
			}
			assessment.Dimensions[name] = clamp(f)
		}
	}

	return assessment, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
