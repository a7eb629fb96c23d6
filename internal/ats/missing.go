package ats

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// GetMissingSkills returns the job keywords that are neither listed as a
// resume skill nor mentioned in the summary or bullet text, in job order.
func GetMissingSkills(resume types.Resume, job types.Job) []string {
	skills := make(map[string]bool, len(resume.Skills))
	for _, s := range resume.Skills {
		skills[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var sb strings.Builder
	sb.WriteString(resume.Summary)
	for _, b := range resume.Bullets {
		sb.WriteString(" ")
		sb.WriteString(b.DisplayText())
	}
	text := strings.ToLower(sb.String())

	missing := make([]string, 0)
	for _, kw := range job.Keywords {
		lower := strings.ToLower(strings.TrimSpace(kw))
		if lower == "" || skills[lower] || strings.Contains(text, lower) {
			continue
		}
		missing = append(missing, kw)
	}
	return missing
}
