// Package vocabulary loads the static matching tables (section headers, action verbs,
// technology keywords, seniority levels, industry profiles) from a declarative YAML document.
package vocabulary

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultTable []byte

var (
	defaultOnce sync.Once
	defaultVoc  *Table
	defaultErr  error
)

// SectionHeader maps a canonical section name to the header patterns that open it
type SectionHeader struct {
	Section  string   `yaml:"section"`
	Patterns []string `yaml:"patterns"`

	compiled []*regexp.Regexp
}

// Rewrite replaces a weak opening phrase with a stronger one
type Rewrite struct {
	Phrase      string `yaml:"phrase"`
	Replacement string `yaml:"replacement"`
}

// Industry is a benchmark profile used to place ATS scores
type Industry struct {
	Industry string   `yaml:"industry"`
	Average  int      `yaml:"average"`
	Top      int      `yaml:"top"`
	Keywords []string `yaml:"keywords"`
}

// JobSections holds the header patterns used by the job posting parser
type JobSections struct {
	ResponsibilitiesStart []string `yaml:"responsibilities_start"`
	ResponsibilitiesStop  []string `yaml:"responsibilities_stop"`
	RequiredStart         []string `yaml:"required_start"`
	PreferredStart        []string `yaml:"preferred_start"`
}

// Table is the full set of vocabularies. Build one with Load or use Default.
type Table struct {
	SectionHeaders  []SectionHeader `yaml:"section_headers"`
	DefaultSection  string          `yaml:"default_section"`
	SummarySection  string          `yaml:"summary_section"`
	SkillsSection   string          `yaml:"skills_section"`
	ActionVerbs     []string        `yaml:"action_verbs"`
	WeakOpeners     []Rewrite       `yaml:"weak_openers"`
	FillerPhrases   []string        `yaml:"filler_phrases"`
	TechKeywords    []string        `yaml:"tech_keywords"`
	SeniorityLevels []string        `yaml:"seniority_levels"`
	JobSections     JobSections     `yaml:"job_sections"`
	TitleWords      []string        `yaml:"title_words"`
	Industries      []Industry      `yaml:"industries"`

	verbs          map[string]bool
	titleWords     map[string]bool
	respStart      []*regexp.Regexp
	respStop       []*regexp.Regexp
	requiredStart  []*regexp.Regexp
	preferredStart []*regexp.Regexp
}

// Default returns the embedded vocabulary table. It panics if the embedded
// document is malformed, which can only happen at build time.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultVoc, defaultErr = Load(defaultTable)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("failed to load embedded vocabulary: %v", defaultErr))
	}
	return defaultVoc
}

// Load parses a YAML vocabulary document and compiles its patterns
func Load(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary YAML: %w", err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) compile() error {
	if t.DefaultSection == "" {
		return fmt.Errorf("vocabulary: default_section is required")
	}

	for i := range t.SectionHeaders {
		h := &t.SectionHeaders[i]
		if h.Section == "" {
			return fmt.Errorf("vocabulary: section_headers[%d] has no section name", i)
		}
		compiled, err := compileAll(h.Patterns)
		if err != nil {
			return fmt.Errorf("vocabulary: section %s: %w", h.Section, err)
		}
		h.compiled = compiled
	}

	t.verbs = make(map[string]bool, len(t.ActionVerbs))
	for _, v := range t.ActionVerbs {
		t.verbs[strings.ToLower(strings.TrimSpace(v))] = true
	}
	t.titleWords = make(map[string]bool, len(t.TitleWords))
	for _, w := range t.TitleWords {
		t.titleWords[strings.ToLower(strings.TrimSpace(w))] = true
	}

	var err error
	if t.respStart, err = compileAll(t.JobSections.ResponsibilitiesStart); err != nil {
		return fmt.Errorf("vocabulary: responsibilities_start: %w", err)
	}
	if t.respStop, err = compileAll(t.JobSections.ResponsibilitiesStop); err != nil {
		return fmt.Errorf("vocabulary: responsibilities_stop: %w", err)
	}
	if t.requiredStart, err = compileAll(t.JobSections.RequiredStart); err != nil {
		return fmt.Errorf("vocabulary: required_start: %w", err)
	}
	if t.preferredStart, err = compileAll(t.JobSections.PreferredStart); err != nil {
		return fmt.Errorf("vocabulary: preferred_start: %w", err)
	}

	for _, ind := range t.Industries {
		if ind.Top <= ind.Average {
			return fmt.Errorf("vocabulary: industry %s: top must exceed average", ind.Industry)
		}
	}
	return nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// StripHeader removes surrounding punctuation and collapses whitespace,
// keeping the original casing: "WORK EXPERIENCE:" becomes "WORK EXPERIENCE".
func StripHeader(line string) string {
	line = strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
	})
	return strings.Join(strings.Fields(line), " ")
}

// NormalizeHeader is StripHeader lowercased, the form header patterns match against
func NormalizeHeader(line string) string {
	return strings.ToLower(StripHeader(line))
}

// MatchHeader returns the canonical section a line opens, if it is a header.
func (t *Table) MatchHeader(line string) (string, bool) {
	normalized := NormalizeHeader(line)
	if normalized == "" || len(normalized) > 50 {
		return "", false
	}
	for _, h := range t.SectionHeaders {
		for _, re := range h.compiled {
			if re.MatchString(normalized) {
				return h.Section, true
			}
		}
	}
	return "", false
}

// IsActionVerb reports whether word is in the action-verb vocabulary
func (t *Table) IsActionVerb(word string) bool {
	return t.verbs[strings.ToLower(strings.Trim(word, ".,;:!?()\"'"))]
}

// IsTitleWord reports whether word commonly appears in job titles
func (t *Table) IsTitleWord(word string) bool {
	return t.titleWords[strings.ToLower(strings.Trim(word, ".,;:!?()\"'"))]
}

// OpensResponsibilities reports whether a job posting line starts the responsibilities block
func (t *Table) OpensResponsibilities(line string) bool {
	return matchAny(t.respStart, NormalizeHeader(line))
}

// ClosesResponsibilities reports whether a job posting line ends the responsibilities block
func (t *Table) ClosesResponsibilities(line string) bool {
	return matchAny(t.respStop, NormalizeHeader(line))
}

// OpensRequired reports whether a job posting line starts the required-skills block
func (t *Table) OpensRequired(line string) bool {
	return matchAny(t.requiredStart, NormalizeHeader(line))
}

// OpensPreferred reports whether a job posting line starts the preferred-skills block
func (t *Table) OpensPreferred(line string) bool {
	return matchAny(t.preferredStart, NormalizeHeader(line))
}

func matchAny(res []*regexp.Regexp, s string) bool {
	if s == "" {
		return false
	}
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// FindTechKeywords returns the technology keywords that occur in text as whole
// terms, in vocabulary order.
func (t *Table) FindTechKeywords(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	for _, kw := range t.TechKeywords {
		if ContainsTerm(lower, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

// ContainsTerm reports whether term occurs in text without being glued to
// surrounding letters or digits. Both arguments must already be lowercase.
func ContainsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	start := 0
	for {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)
		if !isWordByte(text, idx-1) && !isWordByte(text, end) {
			return true
		}
		start = idx + 1
		if start >= len(text) {
			return false
		}
	}
}

func isWordByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
