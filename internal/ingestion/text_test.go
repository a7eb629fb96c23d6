package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_PreserveBulletLists(t *testing.T) {
	input := "- Item 1\n- Item 2\n* Item 3\n• Item 4"
	result := CleanText(input)

	assert.Contains(t, result, "- Item 1")
	assert.Contains(t, result, "- Item 2")
	assert.Contains(t, result, "* Item 3")
	assert.Contains(t, result, "• Item 4")
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	input := "Line    with    multiple    spaces"
	result := CleanText(input)

	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	input := "Line 1\n\n\n\n\nLine 2"
	result := CleanText(input)

	assert.Equal(t, "Line 1\n\nLine 2", result)
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	input := "Line 1\r\nLine 2\rLine 3\nLine 4"
	result := CleanText(input)

	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", result)
}

func TestCleanText_StripsZeroWidthCharacters(t *testing.T) {
	input := "Jane\u200b Doe\u00a0Smith"
	assert.Equal(t, "Jane Doe Smith", CleanText(input))
}

func TestCleanText_DropsInvalidBytesAndControlCharacters(t *testing.T) {
	assert.Equal(t, "garbage", CleanText("\xff\xfe\x00 garbage"))
	assert.Equal(t, "Jane Doe\nLine two", CleanText("Ja\x00ne\x07 Doe\nLine\ttwo\x1b"))
	assert.Equal(t, "a b", CleanText("a\fb"))
}

func TestCleanText_DeterministicOutput(t *testing.T) {
	input := "Test content   with   spaces\n\n\nMultiple   blank   lines"
	assert.Equal(t, CleanText(input), CleanText(input))
}

func TestCleanText_EmptyInput(t *testing.T) {
	assert.Empty(t, CleanText(""))
	assert.Empty(t, CleanText("   \n  \n  "))
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	input := "Test with émojis 🚀 and spéciàl chàracters"
	result := CleanText(input)

	assert.Contains(t, result, "émojis")
	assert.Contains(t, result, "🚀")
	assert.Contains(t, result, "spéciàl chàracters")
}

func TestIsBulletLine(t *testing.T) {
	assert.True(t, IsBulletLine("• Built things"))
	assert.True(t, IsBulletLine("  - Built things"))
	assert.True(t, IsBulletLine("* Built things"))
	assert.False(t, IsBulletLine("Built things"))
}

func TestNormalize_PlainText(t *testing.T) {
	assert.Equal(t, "Senior Engineer\nTechCorp", Normalize("Senior Engineer  \r\nTechCorp"))
}

func TestNormalize_HTML(t *testing.T) {
	input := "<html><body><h1>Backend Engineer</h1><ul><li>Build APIs</li></ul></body></html>"
	assert.Equal(t, "Backend Engineer\n• Build APIs", Normalize(input))
}

func TestReadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\r\njane@example.com\n\n\n\nExperience"), 0644))

	text, meta, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com\n\nExperience", text)
	require.NotNil(t, meta)
	assert.Equal(t, path, meta.Source)
	assert.False(t, meta.HTML)
	assert.Len(t, meta.Hash, 64)
}

func TestReadFile_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.html")
	require.NoError(t, os.WriteFile(path, []byte("<h1>Backend Engineer</h1><ul><li>Build APIs</li></ul>"), 0644))

	text, meta, err := ReadFile(path)
	require.NoError(t, err)
	assert.True(t, meta.HTML)
	assert.Contains(t, text, "Backend Engineer")
}

func TestReadFile_NotFound(t *testing.T) {
	_, _, err := ReadFile("/nonexistent/file.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}
