package tailoring

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

var numberRegex = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// modelOutput mirrors schemas/tailoring_output.schema.json
type modelOutput struct {
	Bullets []struct {
		ID              string  `json:"id"`
		TailoredText    string  `json:"tailored_text"`
		SuggestedMetric *string `json:"suggested_metric"`
	} `json:"bullets"`
	MatchScore float64 `json:"match_score"`
}

// ModelEngine asks a generation backend to rewrite the bullets
type ModelEngine struct {
	gen       llm.Generator
	tier      llm.ModelTier
	systemKey string
}

// NewModelEngine creates a model-assisted engine
func NewModelEngine(gen llm.Generator) *ModelEngine {
	return &ModelEngine{gen: gen, tier: llm.TierAdvanced, systemKey: "system"}
}

// Strategy implements Engine
func (e *ModelEngine) Strategy() Strategy { return StrategyModel }

// Tailor implements Engine. Rewrites that introduce numbers absent from the
// original bullet are discarded.
func (e *ModelEngine) Tailor(ctx context.Context, resume types.Resume, job types.Job, style types.TailorStyle) (types.TailoredResumeOutput, error) {
	style, err := normalizeStyle(style)
	if err != nil {
		return types.TailoredResumeOutput{}, err
	}

	systemPrompt, err := prompts.Get(prompts.TailoringFile, e.systemKey)
	if err != nil {
		return types.TailoredResumeOutput{}, err
	}
	userPrompt, err := buildUserPrompt(resume, job, style)
	if err != nil {
		return types.TailoredResumeOutput{}, err
	}

	raw, err := e.gen.GenerateStructured(ctx, llm.StructuredRequest{
		Tier:         e.tier,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Schema:       OutputSchema(),
	})
	if err != nil {
		return types.TailoredResumeOutput{}, &APICallError{Message: "failed to generate tailored bullets", Cause: err}
	}

	if err := schemas.Validate(schemas.KindTailoringOutput, raw); err != nil {
		return types.TailoredResumeOutput{}, &ContractError{Engine: string(StrategyModel), Reason: err.Error()}
	}
	var decoded modelOutput
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return types.TailoredResumeOutput{}, &ContractError{Engine: string(StrategyModel), Reason: err.Error()}
	}

	tailored := resume.Clone()
	index := make(map[string]int, len(tailored.Bullets))
	for i := range tailored.Bullets {
		tailored.Bullets[i].TailoredText = ""
		index[tailored.Bullets[i].ID] = i
	}
	for _, rb := range decoded.Bullets {
		i, ok := index[rb.ID]
		if !ok {
			continue
		}
		b := &tailored.Bullets[i]
		if text := cleanRewrite(rb.TailoredText); text != "" && text != b.RawText && !inventsNumbers(b.RawText, text) {
			b.TailoredText = text
		}
		if rb.SuggestedMetric != nil && !b.HasMetric() {
			b.SuggestedMetric = strings.TrimSpace(*rb.SuggestedMetric)
		}
	}

	out := finish(tailored, job)
	out.MatchScore = clampScore(decoded.MatchScore)
	return out, nil
}

func buildUserPrompt(resume types.Resume, job types.Job, style types.TailorStyle) (string, error) {
	styleText, err := prompts.Get(prompts.TailoringFile, "style-"+string(style))
	if err != nil {
		return "", err
	}

	var resp strings.Builder
	for _, r := range job.Responsibilities {
		fmt.Fprintf(&resp, "- %s\n", r)
	}
	var bullets strings.Builder
	for _, b := range resume.Bullets {
		fmt.Fprintf(&bullets, "%s: %s\n", b.ID, b.RawText)
	}

	return prompts.Render(prompts.TailoringFile, "user", map[string]string{
		"Title":            job.Title,
		"Seniority":        job.Seniority,
		"Keywords":         strings.Join(job.Keywords, ", "),
		"Responsibilities": strings.TrimRight(resp.String(), "\n"),
		"Skills":           strings.Join(resume.Skills, ", "),
		"Style":            styleText,
		"Bullets":          strings.TrimRight(bullets.String(), "\n"),
	})
}

// cleanRewrite trims a list marker and surrounding whitespace from model text
func cleanRewrite(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "•-*· ")
	return strings.TrimSpace(text)
}

// inventsNumbers reports whether rewritten mentions a number the original does not
func inventsNumbers(original, rewritten string) bool {
	known := make(map[string]bool)
	for _, n := range numberRegex.FindAllString(original, -1) {
		known[n] = true
	}
	for _, n := range numberRegex.FindAllString(rewritten, -1) {
		if !known[n] {
			return true
		}
	}
	return false
}

// OutputSchema is the output contract given to the backend
func OutputSchema() *llm.Schema {
	return &llm.Schema{
		Type:     llm.TypeObject,
		Required: []string{"bullets", "match_score"},
		Properties: map[string]*llm.Schema{
			"bullets": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type:     llm.TypeObject,
					Required: []string{"id", "tailored_text"},
					Properties: map[string]*llm.Schema{
						"id":               {Type: llm.TypeString, Description: "Id of the bullet that was rewritten"},
						"tailored_text":    {Type: llm.TypeString},
						"suggested_metric": {Type: llm.TypeString, Nullable: true, Description: "Bracketed placeholder such as [X]%"},
					},
				},
			},
			"match_score": {Type: llm.TypeNumber, Description: "Fit between 0 and 1"},
		},
	}
}
