// Package observability provides logger construction and formatted output
// utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList writes up to limit items, then a count of the remainder
func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintResume outputs a human-readable summary of a parsed resume.
func (p *Printer) PrintResume(resume *types.Resume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", resume.Name))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", resume.Email))
	if resume.Phone != "" {
		sb.WriteString(fmt.Sprintf("Phone:    %s\n", resume.Phone))
	}
	sb.WriteString(fmt.Sprintf("Sections: %s\n", strings.Join(resume.Sections, ", ")))
	sb.WriteString(fmt.Sprintf("Bullets:  %d\n", len(resume.Bullets)))

	if len(resume.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		writeList(&sb, resume.Skills, maxItemsToShow)
	}

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJob outputs a human-readable summary of a parsed job posting.
func (p *Printer) PrintJob(job *types.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:     %s\n", job.Title))
	if job.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:   %s\n", job.Company))
	}
	if job.Seniority != "" {
		sb.WriteString(fmt.Sprintf("Seniority: %s\n", job.Seniority))
	}
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("Location:  %s\n", job.Location))
	}

	if len(job.Keywords) > 0 {
		sb.WriteString("\nKeywords:\n")
		writeList(&sb, job.Keywords, maxItemsToShow)
	}
	if len(job.Responsibilities) > 0 {
		sb.WriteString("\nResponsibilities:\n")
		writeList(&sb, job.Responsibilities, 3)
	}

	p.printBox("PARSED JOB", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintATSScore outputs the score breakdown, benchmark and suggestions.
func (p *Printer) PrintATSScore(score *types.ATSScore) {
	if score == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall:     %d/100\n", score.OverallScore))
	sb.WriteString(fmt.Sprintf("Keywords:    %d\n", score.KeywordMatch))
	sb.WriteString(fmt.Sprintf("Formatting:  %d\n", score.FormattingScore))
	sb.WriteString(fmt.Sprintf("Readability: %d\n", score.ReadabilityScore))

	if b := score.IndustryBenchmark; b != nil {
		sb.WriteString(fmt.Sprintf("\n%s: avg %d, top %d\n", b.Industry, b.Average, b.Top))
		sb.WriteString(fmt.Sprintf("Percentile %d (%+.1f vs average)\n", b.Percentile, b.DeltaFromAverage))
	}

	if len(score.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		writeList(&sb, score.Suggestions, maxItemsToShow)
	}

	p.printBox("ATS SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTailoring outputs the tailored bullets with match score and gaps.
func (p *Printer) PrintTailoring(out *types.TailorResponseData) {
	if out == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Strategy: %s", out.Strategy))
	if out.Degraded {
		sb.WriteString(" (degraded)")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Match:    %d%%\n", types.MatchPercent(out.MatchScore)))
	if out.ATSScore != nil {
		sb.WriteString(fmt.Sprintf("ATS:      %d/100\n", out.ATSScore.OverallScore))
	}

	if len(out.MissingSkills) > 0 {
		sb.WriteString(fmt.Sprintf("Missing:  %s\n", strings.Join(out.MissingSkills, ", ")))
	}

	bullets := out.Resume.Bullets
	if len(bullets) > 0 {
		sb.WriteString("\n")
		count := min(len(bullets), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("• %s\n", bullets[i].DisplayText()))
			if bullets[i].SuggestedMetric != "" {
				sb.WriteString(fmt.Sprintf("  [%s]\n", bullets[i].SuggestedMetric))
			}
		}
		if len(bullets) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more bullets\n", len(bullets)-maxItemsToShow))
		}
	}

	p.printBox("TAILORED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatches outputs responsibility-to-bullet similarity matches.
func (p *Printer) PrintMatches(matches []types.BulletSimilarityMatch) {
	if len(matches) == 0 {
		p.printBox("SIMILARITY MATCHES", "No matches above threshold")
		return
	}

	var sb strings.Builder
	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("%.2f  %s\n", m.Similarity, m.Responsibility))
		sb.WriteString(fmt.Sprintf("   -> %s\n", m.BulletText))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more matches\n", len(matches)-maxItemsToShow))
	}

	p.printBox("SIMILARITY MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the result of a structural validation run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidation(kind string, problems []string) {
	if len(problems) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ VALID "+strings.ToUpper(kind))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problems:\n\n", len(problems)))
	for _, prob := range problems {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", prob))
	}

	p.printBox("INVALID "+strings.ToUpper(kind), strings.TrimSuffix(sb.String(), "\n"))
}
