// Package parsing turns free-text resumes and job postings into structured
// records, either heuristically or with a generation backend.
package parsing

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/vocabulary"
)

// Segment is a run of lines belonging to one section. Header is the raw
// header line that opened it, empty for the implicit leading segment.
type Segment struct {
	Section string
	Header  string
	Lines   []string
}

// Lines returns the non-empty, trimmed lines of text
func Lines(text string) []string {
	cleaned := ingestion.CleanText(text)
	if cleaned == "" {
		return nil
	}
	raw := strings.Split(cleaned, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// SegmentLines splits lines into sections. Each line is tested against the
// header patterns in order and the first match opens a new section; other
// lines belong to the open section, which is the default section until the
// first header.
func SegmentLines(lines []string) []Segment {
	voc := vocabulary.Default()

	segments := make([]Segment, 0, 8)
	current := Segment{Section: voc.DefaultSection}
	for _, line := range lines {
		if section, ok := voc.MatchHeader(line); ok {
			if current.Header != "" || len(current.Lines) > 0 {
				segments = append(segments, current)
			}
			current = Segment{Section: section, Header: line}
			continue
		}
		current.Lines = append(current.Lines, line)
	}
	if current.Header != "" || len(current.Lines) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// SegmentText is SegmentLines over Lines(text)
func SegmentText(text string) []Segment {
	return SegmentLines(Lines(text))
}
