// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Job represents a structured job posting extracted from raw text
type Job struct {
	Title            string   `json:"title"`
	Seniority        string   `json:"seniority,omitempty"`
	Company          string   `json:"company,omitempty"`
	Location         string   `json:"location,omitempty"`
	Keywords         []string `json:"keywords"`
	Responsibilities []string `json:"responsibilities"`
	RequiredSkills   []string `json:"required_skills,omitempty"`
	PreferredSkills  []string `json:"preferred_skills,omitempty"`
}

// Clone returns a deep copy of the job
func (j Job) Clone() Job {
	out := j
	out.Keywords = cloneStrings(j.Keywords)
	out.Responsibilities = cloneStrings(j.Responsibilities)
	out.RequiredSkills = cloneStrings(j.RequiredSkills)
	out.PreferredSkills = cloneStrings(j.PreferredSkills)
	return out
}
