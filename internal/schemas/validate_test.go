package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ResumeValid(t *testing.T) {
	doc := `{"name":"Jane","email":"jane@example.com","sections":["Experience"],"skills":["Go"],
		"bullets":[{"id":"bullet-0","section":"Experience","raw_text":"Built APIs","metric_value":40,"metric_unit":"%"}]}`
	assert.NoError(t, Validate(KindResume, []byte(doc)))
}

func TestValidate_ResumeMissingField(t *testing.T) {
	doc := `{"name":"Jane","sections":[],"skills":[],"bullets":[]}`

	err := Validate(KindResume, []byte(doc))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Contains(t, validationErr.Error(), "email")
}

func TestValidate_ResumeWrongTypes(t *testing.T) {
	doc := `{"name":"Jane","email":"j@x.io","sections":"Experience","skills":[1],
		"bullets":[{"id":"1","section":"Experience","raw_text":"x","metric_value":"forty"}]}`

	err := Validate(KindResume, []byte(doc))
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.GreaterOrEqual(t, len(validationErr.Errors), 3)
}

func TestValidate_JobNullOptionals(t *testing.T) {
	doc := `{"title":"Engineer","keywords":[],"responsibilities":[],"seniority":null,"required_skills":null}`
	assert.NoError(t, Validate(KindJob, []byte(doc)))
}

func TestValidate_TailoringOutputScoreRange(t *testing.T) {
	assert.NoError(t, Validate(KindTailoringOutput, []byte(`{"bullets":[{"id":"a","tailored_text":"Led"}],"match_score":0.5}`)))
	assert.Error(t, Validate(KindTailoringOutput, []byte(`{"bullets":[],"match_score":72}`)))
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(KindJob, []byte("{ invalid json }"))
	require.Error(t, err)

	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
}

func TestValidate_UnknownKind(t *testing.T) {
	err := Validate(Kind("cover_letter"), []byte(`{}`))

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "unknown schema kind")
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"Eng","keywords":["go"],"responsibilities":[]}`), 0644))

	assert.NoError(t, ValidateFile(KindJob, path))

	err := ValidateFile(KindJob, filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","required":["id"],"properties":{"id":{"type":"string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"id":"x"}`))

	err := ValidateJSONString(schema, `{"id":5}`)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "id", validationErr.Errors[0].Field)
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}
