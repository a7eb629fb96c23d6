// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Placeholders written by the sanitizer when a field could not be extracted
const (
	UnknownName  = "Unknown"
	UnknownEmail = "unknown@email.com"
	UntitledJob  = "Untitled Position"
)

// Resume represents a parsed resume. Field names are the interchange format
// shared with the HTTP layer and must not change.
type Resume struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone,omitempty"`
	Summary  string         `json:"summary,omitempty"`
	Sections []string       `json:"sections"`
	Skills   []string       `json:"skills"`
	Bullets  []ResumeBullet `json:"bullets"`
}

// ResumeBullet represents a single achievement line within a resume
type ResumeBullet struct {
	ID              string   `json:"id"`
	Section         string   `json:"section"`
	Company         string   `json:"company,omitempty"`
	StartDate       string   `json:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty"`
	RawText         string   `json:"raw_text"`
	Action          string   `json:"action,omitempty"`
	Impact          string   `json:"impact,omitempty"`
	MetricValue     *float64 `json:"metric_value,omitempty"`
	MetricUnit      string   `json:"metric_unit,omitempty"`
	TailoredText    string   `json:"tailored_text,omitempty"`
	SuggestedMetric string   `json:"suggested_metric,omitempty"`
}

// DisplayText returns the tailored wording when present, otherwise the original.
func (b ResumeBullet) DisplayText() string {
	if b.TailoredText != "" {
		return b.TailoredText
	}
	return b.RawText
}

// HasMetric reports whether the bullet carries a detected or suggested metric.
func (b ResumeBullet) HasMetric() bool {
	return b.MetricValue != nil || b.SuggestedMetric != ""
}

// Clone returns a deep copy so callers can derive a new resume without
// mutating the input.
func (r Resume) Clone() Resume {
	out := r
	out.Sections = cloneStrings(r.Sections)
	out.Skills = cloneStrings(r.Skills)
	if r.Bullets != nil {
		out.Bullets = make([]ResumeBullet, len(r.Bullets))
		for i, b := range r.Bullets {
			if b.MetricValue != nil {
				v := *b.MetricValue
				b.MetricValue = &v
			}
			out.Bullets[i] = b
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
