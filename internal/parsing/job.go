package parsing

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/vocabulary"
)

const (
	titleScanLines = 10
	minTitleLength = 5
	maxTitleLength = 100
)

var (
	locationLineRegex = regexp.MustCompile(`(?i)^location\s*:\s*(.+)$`)
	companyLineRegex  = regexp.MustCompile(`(?i)^(?:company|employer|organization)\s*:\s*(.+)$`)
	atCompanyRegex    = regexp.MustCompile(`\bat\s+([A-Z][\w&.\-]*(?:\s+[A-Z][\w&.\-]*){0,3})`)
)

// JobParser turns raw job posting text into a sanitized Job
type JobParser interface {
	ParseJob(ctx context.Context, text string) (types.Job, error)
}

// HeuristicJobParser extracts job fields with fixed vocabularies and line patterns
type HeuristicJobParser struct{}

// ParseJob implements JobParser
func (HeuristicJobParser) ParseJob(_ context.Context, text string) (j types.Job, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &HeuristicError{Parser: "job", Panic: p}
		}
	}()
	return ParseJobText(text), nil
}

// ParseJobText runs the heuristic job extractors over text. HTML input is
// converted to text first.
func ParseJobText(text string) types.Job {
	lines := Lines(ingestion.Normalize(text))
	joined := strings.Join(lines, "\n")
	voc := vocabulary.Default()

	title := ExtractJobTitle(lines)
	required, preferred := ExtractSkillBlocks(lines)

	return schemas.SanitizeJob(types.Job{
		Title:            title,
		Seniority:        ExtractSeniority(title, joined),
		Company:          extractCompany(lines),
		Location:         extractLocation(lines, joined),
		Keywords:         voc.FindTechKeywords(joined),
		Responsibilities: ExtractResponsibilities(lines),
		RequiredSkills:   required,
		PreferredSkills:  preferred,
	})
}

// ExtractJobTitle returns the first of the first ten lines that is 5 to 100
// characters long and mentions neither "about" nor "company".
func ExtractJobTitle(lines []string) string {
	for i, line := range lines {
		if i >= titleScanLines {
			break
		}
		candidate := strings.TrimSpace(strings.TrimLeft(line, "# "))
		if len(candidate) < minTitleLength || len(candidate) > maxTitleLength {
			continue
		}
		lower := strings.ToLower(candidate)
		if strings.Contains(lower, "about") || strings.Contains(lower, "company") {
			continue
		}
		return candidate
	}
	return ""
}

// ExtractSeniority returns the first seniority level, in vocabulary order,
// found as a case-insensitive substring of the title and text together.
func ExtractSeniority(title, text string) string {
	haystack := strings.ToLower(title + " " + text)
	for _, level := range vocabulary.Default().SeniorityLevels {
		if strings.Contains(haystack, level) {
			return level
		}
	}
	return ""
}

// ExtractResponsibilities returns the bullet lines that follow a
// responsibilities-type header, stopping at an About/Benefits/Perks/We offer line.
func ExtractResponsibilities(lines []string) []string {
	voc := vocabulary.Default()

	out := make([]string, 0)
	open := false
	for _, line := range lines {
		if !ingestion.IsBulletLine(line) {
			switch {
			case voc.ClosesResponsibilities(line):
				open = false
			case voc.OpensResponsibilities(line):
				open = true
			}
			continue
		}
		if !open {
			continue
		}
		if text, _ := stripBulletMarker(line); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// ExtractSkillBlocks scans the lines under required and preferred
// qualification headers for known technology keywords.
func ExtractSkillBlocks(lines []string) ([]string, []string) {
	voc := vocabulary.Default()

	const (
		none = iota
		required
		preferred
	)

	var req, pref []string
	seenReq := map[string]bool{}
	seenPref := map[string]bool{}
	block := none
	for _, line := range lines {
		if !ingestion.IsBulletLine(line) {
			switch {
			case voc.OpensPreferred(line):
				block = preferred
				continue
			case voc.OpensRequired(line):
				block = required
				continue
			case voc.ClosesResponsibilities(line), voc.OpensResponsibilities(line):
				block = none
				continue
			}
		}

		switch block {
		case required:
			req = appendUnique(req, seenReq, voc.FindTechKeywords(line))
		case preferred:
			pref = appendUnique(pref, seenPref, voc.FindTechKeywords(line))
		}
	}
	return req, pref
}

func appendUnique(dst []string, seen map[string]bool, items []string) []string {
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			dst = append(dst, item)
		}
	}
	return dst
}

func extractLocation(lines []string, joined string) string {
	for _, line := range lines {
		if m := locationLineRegex.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if vocabulary.ContainsTerm(strings.ToLower(joined), "remote") {
		return "Remote"
	}
	return ""
}

func extractCompany(lines []string) string {
	for _, line := range lines {
		if m := companyLineRegex.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	for i, line := range lines {
		if i >= titleScanLines {
			break
		}
		if ingestion.IsBulletLine(line) {
			continue
		}
		if m := atCompanyRegex.FindStringSubmatch(line); m != nil {
			return strings.TrimRight(m[1], ".,")
		}
	}
	return ""
}

// ModelJobParser asks a generation backend for a schema-constrained Job
type ModelJobParser struct {
	gen  llm.Generator
	tier llm.ModelTier
}

// NewModelJobParser creates a model-assisted job parser
func NewModelJobParser(gen llm.Generator) *ModelJobParser {
	return &ModelJobParser{gen: gen, tier: llm.TierStandard}
}

// ParseJob implements JobParser
func (p *ModelJobParser) ParseJob(ctx context.Context, text string) (types.Job, error) {
	text = ingestion.Normalize(text)
	if text == "" {
		return types.Job{}, &ValidationError{Field: "text", Message: "job text is empty"}
	}

	systemPrompt, err := prompts.Get(prompts.ParsingFile, "job-system")
	if err != nil {
		return types.Job{}, err
	}
	userPrompt, err := prompts.Render(prompts.ParsingFile, "job-user", map[string]string{"Text": text})
	if err != nil {
		return types.Job{}, err
	}

	out, err := p.gen.GenerateStructured(ctx, llm.StructuredRequest{
		Tier:         p.tier,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Schema:       JobOutputSchema(),
	})
	if err != nil {
		return types.Job{}, &APICallError{Message: "failed to generate job", Cause: err}
	}

	var j types.Job
	if err := json.Unmarshal(out, &j); err != nil {
		return types.Job{}, &ParseError{Message: "failed to decode job JSON", Cause: err}
	}

	j.Seniority = strings.ToLower(strings.TrimSpace(j.Seniority))
	if j.RequiredSkills != nil {
		j.RequiredSkills = NormalizeSkills(j.RequiredSkills)
	}
	if j.PreferredSkills != nil {
		j.PreferredSkills = NormalizeSkills(j.PreferredSkills)
	}

	sanitized := schemas.SanitizeJob(j)
	if !schemas.IsJob(sanitized) {
		return types.Job{}, &ValidationError{Message: "model output failed job schema"}
	}
	return sanitized, nil
}

// JobOutputSchema is the output contract given to the backend
func JobOutputSchema() *llm.Schema {
	return &llm.Schema{
		Type:     llm.TypeObject,
		Required: []string{"title", "keywords", "responsibilities"},
		Properties: map[string]*llm.Schema{
			"title":            {Type: llm.TypeString},
			"seniority":        {Type: llm.TypeString},
			"company":          {Type: llm.TypeString},
			"location":         {Type: llm.TypeString},
			"keywords":         llm.StringArray("Technologies, tools and methodologies"),
			"responsibilities": llm.StringArray("Duties, verbatim"),
			"required_skills":  llm.StringArray("Must-have skills"),
			"preferred_skills": llm.StringArray("Nice-to-have skills"),
		},
	}
}
