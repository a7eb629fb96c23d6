package schemas

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/vocabulary"
)

// SanitizeResume returns a fully defaulted copy of r. Missing name and email
// get placeholders, nil lists become empty, bullets without text are dropped,
// and every remaining bullet gets a section and a unique id. The input is not
// modified and SanitizeResume(SanitizeResume(r)) equals SanitizeResume(r).
func SanitizeResume(r types.Resume) types.Resume {
	out := r.Clone()

	out.Name = strings.TrimSpace(out.Name)
	if out.Name == "" {
		out.Name = types.UnknownName
	}
	out.Email = strings.TrimSpace(out.Email)
	if out.Email == "" {
		out.Email = types.UnknownEmail
	}
	out.Phone = strings.TrimSpace(out.Phone)
	out.Summary = strings.TrimSpace(out.Summary)

	out.Sections = uniqueStrings(out.Sections, false)
	out.Skills = uniqueStrings(out.Skills, true)
	out.Bullets = sanitizeBullets(out.Bullets)
	return out
}

func sanitizeBullets(in []types.ResumeBullet) []types.ResumeBullet {
	defaultSection := vocabulary.Default().DefaultSection

	kept := make([]types.ResumeBullet, 0, len(in))
	for _, b := range in {
		if strings.TrimSpace(b.RawText) == "" {
			continue
		}
		b.ID = strings.TrimSpace(b.ID)
		b.Section = strings.TrimSpace(b.Section)
		if b.Section == "" {
			b.Section = defaultSection
		}
		kept = append(kept, b)
	}

	// Ids already present win over generated ones, so a second pass is a no-op
	taken := make(map[string]bool, len(kept))
	for _, b := range kept {
		if b.ID != "" {
			taken[b.ID] = true
		}
	}

	seen := make(map[string]bool, len(kept))
	for i := range kept {
		id := kept[i].ID
		if id != "" && !seen[id] {
			seen[id] = true
			continue
		}
		id = fmt.Sprintf("bullet-%d", i)
		for n := 1; taken[id] || seen[id]; n++ {
			id = fmt.Sprintf("bullet-%d-%d", i, n)
		}
		kept[i].ID = id
		seen[id] = true
		taken[id] = true
	}
	return kept
}

// SanitizeJob returns a fully defaulted copy of j. A missing title gets a
// placeholder and keyword/responsibility lists are never nil.
func SanitizeJob(j types.Job) types.Job {
	out := j.Clone()

	out.Title = strings.TrimSpace(out.Title)
	if out.Title == "" {
		out.Title = types.UntitledJob
	}
	out.Seniority = strings.TrimSpace(out.Seniority)
	out.Company = strings.TrimSpace(out.Company)
	out.Location = strings.TrimSpace(out.Location)

	out.Keywords = uniqueStrings(out.Keywords, true)
	out.Responsibilities = nonEmpty(out.Responsibilities)
	if out.RequiredSkills != nil {
		out.RequiredSkills = uniqueStrings(out.RequiredSkills, true)
	}
	if out.PreferredSkills != nil {
		out.PreferredSkills = uniqueStrings(out.PreferredSkills, true)
	}
	return out
}

// uniqueStrings trims entries, drops blanks and duplicates, and keeps the
// first spelling seen. The result is never nil.
func uniqueStrings(in []string, foldCase bool) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := s
		if foldCase {
			key = strings.ToLower(s)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
