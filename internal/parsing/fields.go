package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/vocabulary"
)

const (
	maxNameLength  = 50
	nameScanLines  = 3
	maxSkillLength = 50
)

var (
	emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRegex = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?(?:\(\d{3}\)|\d{3})[\s.\-]?\d{3}[\s.\-]?\d{4}`)

	// skillSplitRegex separates skill candidates on commas, bullets, pipes and spaced dashes
	skillSplitRegex = regexp.MustCompile(`\s*(?:[,;|•·▪]|\s[-–—]\s)\s*`)
	skillLabelRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z /&]{1,30}:\s*`)
)

// ExtractName returns the first of the first three lines that is not an
// email, a phone number, or a section header and is shorter than 50
// characters. It returns "" when no line qualifies.
func ExtractName(lines []string) string {
	voc := vocabulary.Default()
	for i, line := range lines {
		if i >= nameScanLines {
			break
		}
		if emailRegex.MatchString(line) || phoneRegex.MatchString(line) {
			continue
		}
		if len(line) >= maxNameLength {
			continue
		}
		if _, isHeader := voc.MatchHeader(line); isHeader {
			continue
		}
		return strings.TrimSpace(strings.TrimLeft(line, "# "))
	}
	return ""
}

// ExtractEmail returns the first email address in text
func ExtractEmail(text string) string {
	return emailRegex.FindString(text)
}

// ExtractPhone returns the first phone number in text, or "" if there is none
func ExtractPhone(text string) string {
	return strings.TrimSpace(phoneRegex.FindString(text))
}

// ExtractSummary joins the lines of the first run of summary-type sections
func ExtractSummary(segments []Segment) string {
	summarySection := vocabulary.Default().SummarySection

	var parts []string
	inRun := false
	for _, seg := range segments {
		if seg.Section == summarySection {
			inRun = true
			parts = append(parts, seg.Lines...)
			continue
		}
		if inRun {
			break
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ExtractSkills collects skills from Skills sections, then appends any known
// technology keyword found anywhere in the document. Duplicates are dropped
// case-insensitively, keeping the first spelling.
func ExtractSkills(segments []Segment, fullText string) []string {
	voc := vocabulary.Default()

	skills := make([]string, 0)
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if len(s) <= 1 || len(s) >= maxSkillLength || seen[key] {
			return
		}
		seen[key] = true
		skills = append(skills, s)
	}

	for _, seg := range segments {
		if seg.Section != voc.SkillsSection {
			continue
		}
		for _, line := range seg.Lines {
			line = strings.TrimLeft(line, "•-*·▪ \t")
			line = skillLabelRegex.ReplaceAllString(line, "")
			for _, candidate := range skillSplitRegex.Split(line, -1) {
				add(strings.Trim(candidate, " .\t"))
			}
		}
	}

	for _, kw := range voc.FindTechKeywords(fullText) {
		add(kw)
	}
	return skills
}

// ExtractSections returns the header lines in order of appearance with
// surrounding punctuation stripped, without duplicates.
func ExtractSections(segments []Segment) []string {
	sections := make([]string, 0, len(segments))
	seen := make(map[string]bool)
	for _, seg := range segments {
		if seg.Header == "" {
			continue
		}
		header := vocabulary.StripHeader(seg.Header)
		if header == "" || seen[header] {
			continue
		}
		seen[header] = true
		sections = append(sections, header)
	}
	return sections
}
