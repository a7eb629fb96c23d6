// Package tailoring rewrites resume bullets toward a target job. Every engine
// returns the same contract: raw_text preserved, tailored_text set only on
// rewritten bullets, match_score in [0,1], missing_skills from ats.GetMissingSkills.
package tailoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/ats"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/vocabulary"
)

// Strategy names an engine
type Strategy string

// Known engines
const (
	StrategyStub  Strategy = "stub"
	StrategyModel Strategy = "model"
)

// Valid reports whether s names a known engine
func (s Strategy) Valid() bool {
	return s == StrategyStub || s == StrategyModel
}

// Engine tailors a resume for a job
type Engine interface {
	Tailor(ctx context.Context, resume types.Resume, job types.Job, style types.TailorStyle) (types.TailoredResumeOutput, error)
	Strategy() Strategy
}

// normalizeStyle defaults an empty style to concise and rejects unknown ones
func normalizeStyle(style types.TailorStyle) (types.TailorStyle, error) {
	if style == "" {
		return types.StyleConcise, nil
	}
	if !style.Valid() {
		return "", &InputError{Field: "style", Message: fmt.Sprintf("%q is not one of concise, detailed", style)}
	}
	return style, nil
}

// finish reorders bullets and fills match_score and missing_skills. It is the
// last step shared by every engine.
func finish(resume types.Resume, job types.Job) types.TailoredResumeOutput {
	resume.Bullets = reorderBullets(resume.Bullets, job)
	return types.TailoredResumeOutput{
		Resume:        resume,
		MatchScore:    clampScore(ats.KeywordCoverage(resume, job)),
		MissingSkills: ats.GetMissingSkills(resume, job),
	}
}

// reorderBullets orders bullets within each section by descending keyword
// relevance, keeping ties in place and sections in order of first appearance.
func reorderBullets(bullets []types.ResumeBullet, job types.Job) []types.ResumeBullet {
	if len(bullets) < 2 {
		return bullets
	}

	var order []string
	groups := make(map[string][]types.ResumeBullet)
	for _, b := range bullets {
		if _, ok := groups[b.Section]; !ok {
			order = append(order, b.Section)
		}
		groups[b.Section] = append(groups[b.Section], b)
	}

	out := make([]types.ResumeBullet, 0, len(bullets))
	for _, section := range order {
		group := groups[section]
		hits := make([]int, len(group))
		for i, b := range group {
			hits[i] = Relevance(b.DisplayText(), job)
		}
		idx := make([]int, len(group))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return hits[idx[a]] > hits[idx[b]] })
		for _, i := range idx {
			out = append(out, group[i])
		}
	}
	return out
}

// Relevance counts the job keywords that occur as whole terms in text
func Relevance(text string, job types.Job) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range job.Keywords {
		if vocabulary.ContainsTerm(lower, strings.ToLower(strings.TrimSpace(kw))) {
			n++
		}
	}
	return n
}

func clampScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	return math.Min(s, 1)
}

// CheckContract verifies that out honors the tailoring contract for input
func CheckContract(engine Strategy, input types.Resume, out types.TailoredResumeOutput) error {
	if out.MatchScore < 0 || out.MatchScore > 1 || math.IsNaN(out.MatchScore) {
		return &ContractError{Engine: string(engine), Reason: fmt.Sprintf("match_score %v outside [0,1]", out.MatchScore)}
	}
	if out.MissingSkills == nil {
		return &ContractError{Engine: string(engine), Reason: "missing_skills is nil"}
	}
	if len(out.Resume.Bullets) != len(input.Bullets) {
		return &ContractError{Engine: string(engine), Reason: fmt.Sprintf("bullet count changed from %d to %d", len(input.Bullets), len(out.Resume.Bullets))}
	}

	type key struct{ id, raw string }
	remaining := make(map[key]int, len(input.Bullets))
	for _, b := range input.Bullets {
		remaining[key{b.ID, b.RawText}]++
	}
	for _, b := range out.Resume.Bullets {
		k := key{b.ID, b.RawText}
		if remaining[k] == 0 {
			return &ContractError{Engine: string(engine), Reason: fmt.Sprintf("bullet %q is not an input bullet with its raw_text unchanged", b.ID)}
		}
		remaining[k]--
		if b.TailoredText == b.RawText && b.TailoredText != "" {
			return &ContractError{Engine: string(engine), Reason: fmt.Sprintf("bullet %q has tailored_text without a rewrite", b.ID)}
		}
	}
	return nil
}
