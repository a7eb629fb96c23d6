package parsing

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// ResumeParser turns raw resume text into a sanitized Resume
type ResumeParser interface {
	ParseResume(ctx context.Context, text string) (types.Resume, error)
}

// HeuristicResumeParser composes the pattern-based extractors. It needs no
// external backend and accepts any input, including the empty string.
type HeuristicResumeParser struct{}

// ParseResume implements ResumeParser
func (HeuristicResumeParser) ParseResume(_ context.Context, text string) (r types.Resume, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &HeuristicError{Parser: "resume", Panic: p}
		}
	}()
	return ParseResumeText(text), nil
}

// ParseResumeText runs the heuristic extractors over text
func ParseResumeText(text string) types.Resume {
	lines := Lines(text)
	segments := SegmentLines(lines)
	joined := strings.Join(lines, "\n")

	return schemas.SanitizeResume(types.Resume{
		Name:     ExtractName(lines),
		Email:    ExtractEmail(joined),
		Phone:    ExtractPhone(joined),
		Summary:  ExtractSummary(segments),
		Sections: ExtractSections(segments),
		Skills:   ExtractSkills(segments, joined),
		Bullets:  ExtractBullets(lines),
	})
}

// ModelResumeParser asks a generation backend for a schema-constrained Resume
type ModelResumeParser struct {
	gen  llm.Generator
	tier llm.ModelTier
}

// NewModelResumeParser creates a model-assisted resume parser
func NewModelResumeParser(gen llm.Generator) *ModelResumeParser {
	return &ModelResumeParser{gen: gen, tier: llm.TierStandard}
}

// ParseResume implements ResumeParser. Any backend or decoding failure is
// returned as an error for the caller to recover from.
func (p *ModelResumeParser) ParseResume(ctx context.Context, text string) (types.Resume, error) {
	if strings.TrimSpace(text) == "" {
		return types.Resume{}, &ValidationError{Field: "text", Message: "resume text is empty"}
	}

	systemPrompt, err := prompts.Get(prompts.ParsingFile, "resume-system")
	if err != nil {
		return types.Resume{}, err
	}
	userPrompt, err := prompts.Render(prompts.ParsingFile, "resume-user", map[string]string{"Text": text})
	if err != nil {
		return types.Resume{}, err
	}

	out, err := p.gen.GenerateStructured(ctx, llm.StructuredRequest{
		Tier:         p.tier,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Schema:       ResumeOutputSchema(),
	})
	if err != nil {
		return types.Resume{}, &APICallError{Message: "failed to generate resume", Cause: err}
	}

	var r types.Resume
	if err := json.Unmarshal(out, &r); err != nil {
		return types.Resume{}, &ParseError{Message: "failed to decode resume JSON", Cause: err}
	}

	// Fill what the model tends to drop before sanitizing
	if strings.TrimSpace(r.Email) == "" {
		r.Email = ExtractEmail(text)
	}
	if strings.TrimSpace(r.Phone) == "" {
		r.Phone = ExtractPhone(text)
	}
	for i := range r.Bullets {
		if strings.TrimSpace(r.Bullets[i].ID) == "" {
			r.Bullets[i].ID = uuid.NewString()
		}
		r.Bullets[i].TailoredText = ""
		r.Bullets[i].SuggestedMetric = ""
	}
	r.Skills = NormalizeSkills(r.Skills)

	sanitized := schemas.SanitizeResume(r)
	if !schemas.IsResume(sanitized) {
		return types.Resume{}, &ValidationError{Message: "model output failed resume schema"}
	}
	return sanitized, nil
}

// ResumeOutputSchema is the output contract given to the backend
func ResumeOutputSchema() *llm.Schema {
	bullet := &llm.Schema{
		Type:     llm.TypeObject,
		Required: []string{"section", "raw_text"},
		Properties: map[string]*llm.Schema{
			"id":           {Type: llm.TypeString},
			"section":      {Type: llm.TypeString, Description: "Canonical section: Experience, Projects, Education, ..."},
			"company":      {Type: llm.TypeString},
			"start_date":   {Type: llm.TypeString},
			"end_date":     {Type: llm.TypeString},
			"raw_text":     {Type: llm.TypeString, Description: "Original bullet wording, verbatim"},
			"action":       {Type: llm.TypeString},
			"impact":       {Type: llm.TypeString},
			"metric_value": {Type: llm.TypeNumber, Nullable: true},
			"metric_unit":  {Type: llm.TypeString},
		},
	}
	return &llm.Schema{
		Type:     llm.TypeObject,
		Required: []string{"name", "email", "sections", "skills", "bullets"},
		Properties: map[string]*llm.Schema{
			"name":     {Type: llm.TypeString},
			"email":    {Type: llm.TypeString},
			"phone":    {Type: llm.TypeString},
			"summary":  {Type: llm.TypeString},
			"sections": llm.StringArray("Section headings in order"),
			"skills":   llm.StringArray("Skills and technologies"),
			"bullets":  {Type: llm.TypeArray, Items: bullet},
		},
	}
}
