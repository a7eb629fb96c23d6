package parsing

import (
	"strings"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"ci/cd":      "CI/CD",
	"cicd":       "CI/CD",
}

// maxAcronymLength is the longest all-caps token kept as an acronym (AWS, SQL, HTML)
const maxAcronymLength = 4

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	isUpper := normalized == strings.ToUpper(normalized)
	isLower := normalized == lower
	singleWord := !strings.Contains(normalized, " ")

	switch {
	case isUpper && isLower:
		// no cased letters
		return normalized
	case isUpper && singleWord && len(normalized) > maxAcronymLength:
		return strings.ToUpper(normalized[:1]) + lower[1:]
	case isLower && singleWord:
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	default:
		return normalized
	}
}

// NormalizeSkills normalizes skill names and drops case-insensitive duplicates,
// keeping the first occurrence.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		n := NormalizeSkillName(s)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
