package ats

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	maxKeywordSuggestions = 5
	minSkills             = 5
)

// suggestions lists improvements in a fixed order: missing keywords,
// summary, skills, metrics, benchmark gap.
func suggestions(resume types.Resume, missing []string, bench *types.IndustryBenchmark, overall int) []string {
	out := make([]string, 0, 5)

	if len(missing) > 0 {
		top := missing[:min(len(missing), maxKeywordSuggestions)]
		out = append(out, "Add missing keywords: "+strings.Join(top, ", "))
	}
	if strings.TrimSpace(resume.Summary) == "" {
		out = append(out, "Add a professional summary")
	}
	if len(resume.Skills) < minSkills {
		out = append(out, fmt.Sprintf("Include more skills (at least %d)", minSkills))
	}

	noMetric := 0
	for _, b := range resume.Bullets {
		if !b.HasMetric() {
			noMetric++
		}
	}
	if noMetric > 0 {
		out = append(out, fmt.Sprintf("Quantify results in %d %s without a metric", noMetric, plural(noMetric, "bullet", "bullets")))
	}

	if bench != nil && overall < bench.Average {
		gap := bench.Average - overall
		out = append(out, fmt.Sprintf("Raise your score by %d %s to reach the %s average of %d",
			gap, plural(gap, "point", "points"), bench.Industry, bench.Average))
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
