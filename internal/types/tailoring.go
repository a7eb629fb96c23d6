// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "math"

// TailorStyle controls the verbosity of rewritten bullets
type TailorStyle string

const (
	// StyleConcise keeps rewritten bullets short
	StyleConcise TailorStyle = "concise"
	// StyleDetailed adds supporting context to rewritten bullets
	StyleDetailed TailorStyle = "detailed"
)

// Valid reports whether the style is one of the supported values
func (s TailorStyle) Valid() bool {
	return s == StyleConcise || s == StyleDetailed
}

// BulletSimilarityMatch pairs a job responsibility with its closest resume bullet
type BulletSimilarityMatch struct {
	Responsibility string  `json:"responsibility"`
	BulletID       string  `json:"bullet_id"`
	BulletText     string  `json:"bullet_text"`
	Similarity     float64 `json:"similarity"`
	Section        string  `json:"section,omitempty"`
	Company        string  `json:"company,omitempty"`
}

// TailoredResumeOutput is the contract shared by every tailoring engine.
// MatchScore is a 0-1 fraction.
type TailoredResumeOutput struct {
	Resume        Resume   `json:"resume"`
	MatchScore    float64  `json:"match_score"`
	MissingSkills []string `json:"missing_skills"`
}

// TailorResponseData is the full response returned to the HTTP layer for a tailoring request
type TailorResponseData struct {
	Resume            Resume                  `json:"resume"`
	MatchScore        float64                 `json:"match_score"`
	MissingSkills     []string                `json:"missing_skills"`
	ATSScore          *ATSScore               `json:"ats_score,omitempty"`
	SimilarityMatches []BulletSimilarityMatch `json:"similarity_matches"`
	Strategy          string                  `json:"strategy"`
	Degraded          bool                    `json:"degraded"`
}

// MatchPercent converts a 0-1 match score into a whole percentage for display.
// Every consumer that renders a percentage goes through here.
func MatchPercent(score float64) int {
	if math.IsNaN(score) || score <= 0 {
		return 0
	}
	if score >= 1 {
		return 100
	}
	return int(math.Round(score * 100))
}
