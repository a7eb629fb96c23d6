package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	v := Default()
	require.NotNil(t, v)
	assert.Equal(t, "Experience", v.DefaultSection)
	assert.Len(t, v.ActionVerbs, 22)
	assert.NotEmpty(t, v.Industries)
}

func TestMatchHeader(t *testing.T) {
	v := Default()
	tests := []struct {
		line    string
		want    string
		matched bool
	}{
		{"Experience", "Experience", true},
		{"WORK EXPERIENCE:", "Experience", true},
		{"Professional Experience", "Experience", true},
		{"Employment History", "Experience", true},
		{"Education", "Education", true},
		{"Technical Skills", "Skills", true},
		{"Skills & Tools", "Skills", true},
		{"Projects", "Projects", true},
		{"Professional Summary", "Summary", true},
		{"Profile", "Summary", true},
		{"Objective", "Summary", true},
		{"Certifications", "Certifications", true},
		{"Honors and Awards", "Awards", true},
		{"Built a distributed experience platform", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := v.MatchHeader(tt.line)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsActionVerb(t *testing.T) {
	v := Default()
	assert.True(t, v.IsActionVerb("Led"))
	assert.True(t, v.IsActionVerb("optimized,"))
	assert.False(t, v.IsActionVerb("responsible"))
}

func TestContainsTerm(t *testing.T) {
	assert.True(t, ContainsTerm("experience with git and docker", "git"))
	assert.False(t, ContainsTerm("digital transformation", "git"))
	assert.True(t, ContainsTerm("node.js services", "node.js"))
	assert.True(t, ContainsTerm("c++, rust", "c++"))
	assert.False(t, ContainsTerm("javascript", "java"))
	assert.False(t, ContainsTerm("anything", ""))
}

func TestFindTechKeywords(t *testing.T) {
	v := Default()
	found := v.FindTechKeywords("We use React, Docker and AWS. JavaScript is a plus.")
	assert.Equal(t, []string{"JavaScript", "React", "Docker", "AWS"}, found)
}

func TestJobSectionMatchers(t *testing.T) {
	v := Default()
	assert.True(t, v.OpensResponsibilities("Responsibilities:"))
	assert.True(t, v.OpensResponsibilities("What you'll do"))
	assert.True(t, v.ClosesResponsibilities("About Us"))
	assert.True(t, v.ClosesResponsibilities("We offer:"))
	assert.True(t, v.OpensPreferred("Nice to have"))
	assert.True(t, v.OpensRequired("Qualifications"))
	assert.False(t, v.ClosesResponsibilities("Build APIs"))
}

func TestLoad_RejectsBadPattern(t *testing.T) {
	_, err := Load([]byte("default_section: Experience\nsection_headers:\n  - section: X\n    patterns: ['(']\n"))
	assert.Error(t, err)
}

func TestLoad_RejectsBadIndustry(t *testing.T) {
	_, err := Load([]byte("default_section: Experience\nindustries:\n  - industry: X\n    average: 80\n    top: 70\n"))
	assert.Error(t, err)
}

func TestStripHeader(t *testing.T) {
	assert.Equal(t, "WORK EXPERIENCE", StripHeader("  WORK EXPERIENCE:  "))
	assert.Equal(t, "Skills & Tools", StripHeader("## Skills & Tools"))
	assert.Equal(t, "professional summary", NormalizeHeader("Professional   Summary -"))
}
