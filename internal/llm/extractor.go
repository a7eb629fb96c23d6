// Package llm - extractor.go builds prompts for providers that cannot enforce
// an output schema natively.
package llm

import (
	"strings"
)

// BuildSchemaPrompt constructs a user prompt that embeds the required output
// schema ahead of the task input.
func BuildSchemaPrompt(userPrompt string, schema *Schema) string {
	if schema == nil {
		return userPrompt
	}

	var sb strings.Builder
	sb.WriteString(userPrompt)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this JSON Schema:\n")
	sb.WriteString(schema.String())
	sb.WriteString("\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Every required field must be present; use \"\" or [] when the input has no value.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")

	return sb.String()
}
