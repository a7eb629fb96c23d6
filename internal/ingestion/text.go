// Package ingestion normalizes raw resume and job text before parsing.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
)

var (
	spaceRunRegex  = regexp.MustCompile(`[ \t\f\v]+`)
	blankRunRegex  = regexp.MustCompile(`\n\n\n+`)
	zeroWidthChars = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "", "\u00a0", " ")
)

// CleanText cleans and normalizes text content while preserving line structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = zeroWidthChars.Replace(content)
	content = stripControl(strings.ToValidUTF8(content, ""))

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = blankRunRegex.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// stripControl drops control characters other than newline and tab.
// Form feeds and vertical tabs become spaces.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\f' || r == '\v':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// cleanLine trims trailing whitespace and collapses inner runs, keeping indentation
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	indent := len(line) - len(trimmed)

	// Bullet lists keep their marker and indentation verbatim
	if IsBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}

	content := spaceRunRegex.ReplaceAllString(trimmed, " ")
	if indent > 0 {
		return strings.Repeat(" ", indent) + content
	}
	return content
}

// IsBulletLine checks if a line starts with a list marker
func IsBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, marker := range []string{"•", "-", "*", "·", "▪", "◦"} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

// Normalize prepares pasted input for parsing. HTML markup is converted to
// text first; if conversion fails the raw input is cleaned as-is.
func Normalize(raw string) string {
	if LooksLikeHTML(raw) {
		if text, err := HTMLToText(raw); err == nil {
			return CleanText(text)
		}
	}
	return CleanText(raw)
}

// ReadFile reads a text or HTML file and returns its normalized content
// along with metadata describing the raw input
func ReadFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	raw := string(content)
	return Normalize(raw), NewMetadata(raw, path), nil
}
