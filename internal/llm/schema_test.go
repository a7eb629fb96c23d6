package llm

import (
	"encoding/json"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSchema() *Schema {
	return &Schema{
		Type:     TypeObject,
		Required: []string{"title", "keywords"},
		Properties: map[string]*Schema{
			"title":     {Type: TypeString, Description: "Job title"},
			"seniority": {Type: TypeString, Nullable: true, Enum: []string{"junior", "senior"}},
			"keywords":  StringArray("Technologies"),
			"score":     {Type: TypeNumber},
		},
	}
}

func TestSchema_ToGenai(t *testing.T) {
	g := sampleSchema().ToGenai()

	assert.Equal(t, genai.TypeObject, g.Type)
	assert.Equal(t, []string{"title", "keywords"}, g.Required)
	require.Contains(t, g.Properties, "keywords")
	assert.Equal(t, genai.TypeArray, g.Properties["keywords"].Type)
	assert.Equal(t, genai.TypeString, g.Properties["keywords"].Items.Type)
	assert.True(t, g.Properties["seniority"].Nullable)
	assert.Equal(t, genai.TypeNumber, g.Properties["score"].Type)
	assert.Nil(t, (*Schema)(nil).ToGenai())
}

func TestSchema_JSONSchema(t *testing.T) {
	doc := sampleSchema().JSONSchema()

	assert.Equal(t, "object", doc["type"])
	props := doc["properties"].(map[string]any)
	assert.Equal(t, []string{"string", "null"}, props["seniority"].(map[string]any)["type"])
	assert.Equal(t, "array", props["keywords"].(map[string]any)["type"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(sampleSchema().String()), &decoded))
	assert.Equal(t, "object", decoded["type"])
}

func TestBuildSchemaPrompt(t *testing.T) {
	prompt := BuildSchemaPrompt("Parse this job.", sampleSchema())

	assert.Contains(t, prompt, "Parse this job.")
	assert.Contains(t, prompt, "Return ONLY valid JSON")
	assert.Contains(t, prompt, `"keywords"`)

	assert.Equal(t, "plain", BuildSchemaPrompt("plain", nil))
}
