package tailoring

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/vocabulary"
)

var (
	parentheticalRegex = regexp.MustCompile(`\s*\([^()]*\)`)
	spaceRunRegex      = regexp.MustCompile(`\s{2,}`)
	spaceBeforePunct   = regexp.MustCompile(`\s+([,.;:])`)
)

// metricTemplates maps verb families to the placeholder suggested for bullets
// without a detected metric
var metricTemplates = []struct {
	verbs    []string
	template string
}{
	{[]string{"increased", "improved", "optimized", "achieved", "streamlined"}, "[X]% improvement"},
	{[]string{"reduced"}, "[X]% reduction"},
	{[]string{"led", "managed", "coordinated", "orchestrated", "spearheaded"}, "team of [N]"},
	{[]string{"built", "developed", "created", "designed", "implemented", "launched", "delivered", "established", "pioneered", "executed"}, "[N] users impacted"},
}

const defaultMetricTemplate = "[X]% impact"

// StubEngine rewrites bullets with fixed rules and needs no backend. It is
// deterministic: the same input always yields the same output.
type StubEngine struct{}

// Strategy implements Engine
func (StubEngine) Strategy() Strategy { return StrategyStub }

// Tailor implements Engine
func (s StubEngine) Tailor(_ context.Context, resume types.Resume, job types.Job, style types.TailorStyle) (out types.TailoredResumeOutput, err error) {
	style, err = normalizeStyle(style)
	if err != nil {
		return types.TailoredResumeOutput{}, err
	}
	defer func() {
		if p := recover(); p != nil {
			out, err = types.TailoredResumeOutput{}, &StubError{Cause: p}
		}
	}()

	voc := vocabulary.Default()
	tailored := resume.Clone()
	for i := range tailored.Bullets {
		b := &tailored.Bullets[i]
		b.TailoredText = ""
		if rewritten := RewriteBullet(voc, b.RawText, style, job); rewritten != b.RawText {
			b.TailoredText = rewritten
		}
		if !b.HasMetric() {
			b.SuggestedMetric = SuggestMetric(voc, *b)
		}
	}
	return finish(tailored, job), nil
}

// RewriteBullet strengthens weak openers and drops filler phrases. The concise
// style also drops parenthetical asides that mention no job keyword. It never
// adds facts.
func RewriteBullet(voc *vocabulary.Table, text string, style types.TailorStyle, job types.Job) string {
	out := strings.TrimSpace(text)
	lower := strings.ToLower(out)
	for _, w := range voc.WeakOpeners {
		if strings.HasPrefix(lower, w.Phrase+" ") {
			out = w.Replacement + out[len(w.Phrase):]
			break
		}
	}

	for _, filler := range voc.FillerPhrases {
		out = removeTerm(out, filler)
	}
	if style == types.StyleConcise {
		out = parentheticalRegex.ReplaceAllStringFunc(out, func(aside string) string {
			if Relevance(aside, job) > 0 {
				return aside
			}
			return ""
		})
	}

	out = spaceRunRegex.ReplaceAllString(out, " ")
	out = spaceBeforePunct.ReplaceAllString(out, "$1")
	out = strings.TrimSpace(out)
	if out == "" {
		return strings.TrimSpace(text)
	}
	return capitalize(out)
}

// removeTerm deletes whole-term occurrences of term, ignoring case
func removeTerm(text, term string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	return re.ReplaceAllString(text, "")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// SuggestMetric picks a bracketed placeholder from the bullet's leading verb
func SuggestMetric(voc *vocabulary.Table, b types.ResumeBullet) string {
	verb := b.Action
	if verb == "" {
		if fields := strings.Fields(b.DisplayText()); len(fields) > 0 && voc.IsActionVerb(fields[0]) {
			verb = fields[0]
		}
	}
	verb = strings.ToLower(strings.Trim(verb, ".,;:"))
	for _, t := range metricTemplates {
		for _, v := range t.verbs {
			if v == verb {
				return t.template
			}
		}
	}
	return defaultMetricTemplate
}
