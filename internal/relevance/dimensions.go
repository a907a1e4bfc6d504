package relevance

import (
	"github.com/dkoval/jobscout/internal/jobs"
	"github.com/dkoval/jobscout/internal/profile"
)

// Each dimension function is pure: (profile, job) -> (score in [0,1], ok).
// ok is false when the pair carries too little data to compute the facet.

// SkillsResult carries the skills score together with the skill breakdown.
type SkillsResult struct {
	Score    float64
	Matching []string
	Missing  []string
}

// ScoreSkills computes the overlap between candidate skills and the job's
// required skills. Matching is case-insensitive, whitespace-trimmed exact
// token equality. Undefined when the job states no required skills.
func ScoreSkills(p *profile.Profile, j *jobs.Job) (SkillsResult, bool) {
	required := make(map[string]string, len(j.RequiredSkills))
	for _, s := range j.RequiredSkills {
		if norm := jobs.Normalize(s); norm != "" {
			required[norm] = s
		}
	}
	if len(required) == 0 {
		return SkillsResult{}, false
	}

	owned := make(map[string]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		if norm := jobs.Normalize(s); norm != "" {
			owned[norm] = struct{}{}
		}
	}

	var matching, missing []string
	for norm, original := range required {
		if _, ok := owned[norm]; ok {
			matching = append(matching, original)
		} else {
			missing = append(missing, original)
		}
	}

	return SkillsResult{
		Score:    float64(len(matching)) / float64(len(required)),
		Matching: sortedCopy(matching),
		Missing:  sortedCopy(missing),
	}, true
}

// ScoreExperience compares the candidate's derived total years against the
// job's stated minimum. Meeting or exceeding the minimum scores 1.0, with no
// penalty for being overqualified; below the minimum the score interpolates
// linearly. Undefined when the job states no minimum.
func ScoreExperience(p *profile.Profile, j *jobs.Job) (float64, bool) {
	if j.MinYearsExperience <= 0 {
		return 0, false
	}
	years := p.YearsOfExperience()
	if years >= j.MinYearsExperience {
		return 1.0, true
	}
	return clamp01(years / j.MinYearsExperience), true
}

// ScoreLocation scores geographic fit: 1.0 for a remote job the candidate
// accepts, 1.0 for an exact city+state match, 0.5 for a country-only match,
// 0.0 otherwise. Undefined when the candidate lists no preferred locations
// and the job is not remote.
func ScoreLocation(p *profile.Profile, j *jobs.Job) (float64, bool) {
	if j.Location.Remote && p.RemotePreference.AcceptsRemote() {
		return 1.0, true
	}
	if len(p.PreferredLocations) == 0 {
		if j.Location.Remote {
			// Remote job the candidate does not want.
			return 0.0, true
		}
		return 0, false
	}

	city := jobs.Normalize(j.Location.City)
	state := jobs.Normalize(j.Location.State)
	country := jobs.Normalize(j.Location.Country)

	countryMatch := false
	for _, pref := range p.PreferredLocations {
		if jobs.Normalize(pref.City) == city && jobs.Normalize(pref.State) == state && city != "" {
			return 1.0, true
		}
		if country != "" && jobs.Normalize(pref.Country) == country {
			countryMatch = true
		}
	}
	if countryMatch {
		return 0.5, true
	}
	return 0.0, true
}

// ScoreSalary computes the fraction of the candidate's requested range that
// the job's stated range covers; a job range that fully contains the request
// scores 1.0. Undefined when either side states no range.
func ScoreSalary(p *profile.Profile, j *jobs.Job) (float64, bool) {
	if !j.Salary.HasRange() {
		return 0, false
	}
	if p.PreferredSalaryMin <= 0 && p.PreferredSalaryMax <= 0 {
		return 0, false
	}

	wantLo, wantHi := p.PreferredSalaryMin, p.PreferredSalaryMax
	if wantLo == 0 {
		wantLo = wantHi
	}
	if wantHi == 0 {
		wantHi = wantLo
	}

	jobLo, jobHi := j.Salary.Bounds()
	if jobLo <= wantLo && jobHi >= wantHi {
		return 1.0, true
	}

	overlapLo := max(wantLo, jobLo)
	overlapHi := min(wantHi, jobHi)
	if overlapHi < overlapLo {
		return 0.0, true
	}
	if wantHi == wantLo {
		// Point request inside the job range.
		return 1.0, true
	}
	return clamp01((overlapHi - overlapLo) / (wantHi - wantLo)), true
}

// ScoreLevel scores seniority fit. A job level inside the candidate's
// preferences scores 1.0; one ladder step away scores 0.5; anything further
// scores 0.0. Undefined when either side states nothing.
func ScoreLevel(p *profile.Profile, j *jobs.Job) (float64, bool) {
	if _, known := j.Level.Index(); !known {
		return 0, false
	}
	if len(p.PreferredLevels) == 0 {
		return 0, false
	}

	best := 0.0
	for _, pref := range p.PreferredLevels {
		dist, ok := j.Level.Distance(pref)
		if !ok {
			continue
		}
		switch dist {
		case 0:
			return 1.0, true
		case 1:
			best = max(best, 0.5)
		}
	}
	return best, true
}
