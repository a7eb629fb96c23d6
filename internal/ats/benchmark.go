package ats

import (
	"math"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/vocabulary"
)

// ClassifyIndustry returns the industry profile whose keywords occur most
// often in the job text. A tie for first place, or no hits at all, yields false.
func ClassifyIndustry(job types.Job) (vocabulary.Industry, bool) {
	text := jobText(job)

	var best vocabulary.Industry
	bestHits, tied := 0, false
	for _, ind := range vocabulary.Default().Industries {
		hits := 0
		for _, kw := range ind.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				hits++
			}
		}
		switch {
		case hits > bestHits:
			best, bestHits, tied = ind, hits, false
		case hits == bestHits && hits > 0:
			tied = true
		}
	}
	if bestHits == 0 || tied {
		return vocabulary.Industry{}, false
	}
	return best, true
}

// Benchmark places overall against the job's industry profile, or returns
// nil when the job cannot be classified.
func Benchmark(overall int, job types.Job) *types.IndustryBenchmark {
	ind, ok := ClassifyIndustry(job)
	if !ok {
		return nil
	}
	return &types.IndustryBenchmark{
		Industry:         ind.Industry,
		Average:          ind.Average,
		Top:              ind.Top,
		Percentile:       Percentile(overall, ind.Average, ind.Top),
		DeltaFromAverage: math.Round(float64(overall-ind.Average)*10) / 10,
	}
}

// Percentile maps a score at or below average linearly into [1,50] and a
// score above average into [50,99], reaching 99 at top.
func Percentile(score, average, top int) int {
	if score <= average {
		if average <= 0 {
			return 50
		}
		frac := float64(max(score, 0)) / float64(average)
		return 1 + int(math.Round(frac*49))
	}
	if top <= average {
		return 99
	}
	frac := math.Min(float64(score-average)/float64(top-average), 1)
	return 50 + int(math.Round(frac*49))
}

// jobText is the lowercased title, seniority, keywords, responsibilities and skills
func jobText(job types.Job) string {
	parts := []string{job.Title, job.Seniority}
	parts = append(parts, job.Keywords...)
	parts = append(parts, job.Responsibilities...)
	parts = append(parts, job.RequiredSkills...)
	parts = append(parts, job.PreferredSkills...)
	return strings.ToLower(strings.Join(parts, " "))
}
