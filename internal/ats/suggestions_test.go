package ats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestScore_Suggestions(t *testing.T) {
	resume := types.Resume{
		Name:     "Jane",
		Email:    "jane@example.com",
		Sections: []string{"Experience"},
		Skills:   []string{"Python", "SQL"},
		Bullets: []types.ResumeBullet{
			{ID: "b1", Section: "Experience", RawText: "Built reporting dashboards for finance", Action: "Built"},
		},
	}
	job := types.Job{
		Title:    "Backend Engineer",
		Keywords: []string{"Kafka", "Scala", "Rust", "Elixir", "Haskell", "Erlang"},
	}

	score := Score(resume, job)
	assert.Equal(t, 54, score.OverallScore)
	assert.Equal(t, []string{
		"Add missing keywords: Kafka, Scala, Rust, Elixir, Haskell",
		"Add a professional summary",
		"Include more skills (at least 5)",
		"Quantify results in 1 bullet without a metric",
		"Raise your score by 18 points to reach the Technology average of 72",
	}, score.Suggestions)
}

func TestGetMissingSkills(t *testing.T) {
	resume := types.Resume{
		Summary: "Experienced with Docker",
		Skills:  []string{"react"},
		Bullets: []types.ResumeBullet{{RawText: "Shipped Terraform modules"}},
	}
	job := types.Job{Keywords: []string{"React", "Docker", "Kafka", "Terraform"}}

	assert.Equal(t, []string{"Kafka"}, GetMissingSkills(resume, job))

	missing := GetMissingSkills(resume, types.Job{})
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}
