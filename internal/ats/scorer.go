// Package ats scores how well a resume will survive an applicant tracking
// system screen for a given job. Scoring is a pure function of its inputs.
package ats

import (
	"math"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/vocabulary"
)

// Weights for the overall score
const (
	keywordWeight     = 0.4
	formattingWeight  = 0.3
	readabilityWeight = 0.3
)

// Formatting penalties
const (
	noNamePenalty     = 20
	noEmailPenalty    = 20
	noSummaryPenalty  = 10
	noSectionsPenalty = 15
	noSkillsPenalty   = 15
	noBulletsPenalty  = 20
	fewMetricsPenalty = 10

	// minMetricShare is the share of bullets that should carry a metric
	minMetricShare = 0.5
)

// Readability penalties
const (
	longBulletPenalty = 5
	maxBulletLength   = 200
	fewVerbsPenalty   = 15

	// minVerbShare is the share of bullets that should use an action verb
	minVerbShare = 0.7
)

// Score computes the full ATS report for resume against job
func Score(resume types.Resume, job types.Job) types.ATSScore {
	fraction, missing := keywordCoverage(resume, job)
	formatting := FormattingScore(resume)
	readability := ReadabilityScore(resume)

	overall := int(math.Round(fraction*100*keywordWeight +
		float64(formatting)*formattingWeight +
		float64(readability)*readabilityWeight))
	overall = clamp(overall, 0, 100)

	score := types.ATSScore{
		OverallScore:     overall,
		KeywordMatch:     int(math.Round(fraction * 100)),
		FormattingScore:  formatting,
		ReadabilityScore: readability,
	}
	score.IndustryBenchmark = Benchmark(overall, job)
	score.Suggestions = suggestions(resume, missing, score.IndustryBenchmark, overall)
	return score
}

// KeywordMatch returns the share of job keywords found in the resume as a 0-100 integer
func KeywordMatch(resume types.Resume, job types.Job) int {
	return int(math.Round(KeywordCoverage(resume, job) * 100))
}

// KeywordCoverage returns the share of job keywords found in the resume as a
// 0-1 fraction, 0 when the job has no keywords.
func KeywordCoverage(resume types.Resume, job types.Job) float64 {
	fraction, _ := keywordCoverage(resume, job)
	return fraction
}

// keywordCoverage returns the fraction of job keywords present as a
// case-insensitive substring of the resume text, and the keywords that are not.
func keywordCoverage(resume types.Resume, job types.Job) (float64, []string) {
	missing := make([]string, 0)
	if len(job.Keywords) == 0 {
		return 0, missing
	}

	text := keywordText(resume)
	found := 0
	for _, kw := range job.Keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			found++
		} else {
			missing = append(missing, kw)
		}
	}
	return float64(found) / float64(len(job.Keywords)), missing
}

// keywordText is the lowercased summary, skills and bullet text
func keywordText(resume types.Resume) string {
	var sb strings.Builder
	sb.WriteString(resume.Summary)
	for _, s := range resume.Skills {
		sb.WriteString(" ")
		sb.WriteString(s)
	}
	for _, b := range resume.Bullets {
		sb.WriteString(" ")
		sb.WriteString(b.DisplayText())
	}
	return strings.ToLower(sb.String())
}

// FormattingScore starts at 100 and subtracts a fixed penalty for every
// missing part of the resume. The sanitizer's placeholder name and email
// count as missing.
func FormattingScore(resume types.Resume) int {
	score := 100
	name := strings.TrimSpace(resume.Name)
	if name == "" || name == types.UnknownName {
		score -= noNamePenalty
	}
	email := strings.TrimSpace(resume.Email)
	if email == "" || email == types.UnknownEmail {
		score -= noEmailPenalty
	}
	if strings.TrimSpace(resume.Summary) == "" {
		score -= noSummaryPenalty
	}
	if len(resume.Sections) == 0 {
		score -= noSectionsPenalty
	}
	if len(resume.Skills) == 0 {
		score -= noSkillsPenalty
	}
	if len(resume.Bullets) == 0 {
		score -= noBulletsPenalty
	} else {
		withMetric := 0
		for _, b := range resume.Bullets {
			if b.HasMetric() {
				withMetric++
			}
		}
		if float64(withMetric)/float64(len(resume.Bullets)) < minMetricShare {
			score -= fewMetricsPenalty
		}
	}
	return max(score, 0)
}

// ReadabilityScore starts at 100, subtracts for every overlong bullet and
// once more if too few bullets use an action verb.
func ReadabilityScore(resume types.Resume) int {
	if len(resume.Bullets) == 0 {
		return 100
	}

	voc := vocabulary.Default()
	score := 100
	withVerb := 0
	for _, b := range resume.Bullets {
		text := b.DisplayText()
		if len(text) > maxBulletLength {
			score -= longBulletPenalty
		}
		if b.Action != "" || containsActionVerb(voc, text) {
			withVerb++
		}
	}
	if float64(withVerb)/float64(len(resume.Bullets)) < minVerbShare {
		score -= fewVerbsPenalty
	}
	return max(score, 0)
}

func containsActionVerb(voc *vocabulary.Table, text string) bool {
	for _, w := range strings.Fields(text) {
		if voc.IsActionVerb(w) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
