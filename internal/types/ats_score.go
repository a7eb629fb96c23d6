// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ATSScore is the applicant-tracking compatibility report for a resume/job pair.
// It is recomputed on every request and never persisted as mutable state.
type ATSScore struct {
	OverallScore      int                `json:"overall_score"`
	KeywordMatch      int                `json:"keyword_match"`
	FormattingScore   int                `json:"formatting_score"`
	ReadabilityScore  int                `json:"readability_score"`
	Suggestions       []string           `json:"suggestions"`
	IndustryBenchmark *IndustryBenchmark `json:"industry_benchmark,omitempty"`
}

// IndustryBenchmark places an overall score against an industry profile
type IndustryBenchmark struct {
	Industry         string  `json:"industry"`
	Average          int     `json:"average"`
	Top              int     `json:"top"`
	Percentile       int     `json:"percentile"`
	DeltaFromAverage float64 `json:"delta_from_average"`
}
