package parsing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/vocabulary"
)

// minBulletLength is the shortest accepted bullet text, exclusive
const minBulletLength = 10

const monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?\s+\d{4}`

var (
	// datedLineRegex decides whether a line introduces an employer
	datedLineRegex = regexp.MustCompile(`(?i)\b(?:` + monthPattern + `|\d{1,2}/\d{4}|present|current|(?:19|20)\d{2}\s*(?:[-–—]|to)\s*(?:(?:19|20)\d{2}|present|current))\b`)
	// dateTokenRegex finds the individual start and end dates on such a line
	dateTokenRegex = regexp.MustCompile(`(?i)\b(?:` + monthPattern + `|\d{1,2}/\d{4}|present|current|(?:19|20)\d{2})\b`)

	rangeLeftoverRegex = regexp.MustCompile(`(?i)(?:\(\s*\)|\s(?:[-–—]|to)\s*$|^\s*(?:[-–—]|to)\s)`)
	companySplitRegex  = regexp.MustCompile(`(?i)\s*(?:[|•·,@]|\s[-–—]\s|\sat\s)\s*`)

	unitMetricRegex   = regexp.MustCompile(`(?i)(\$\s?)?(\d+(?:,\d{3})*(?:\.\d+)?)\s*\+?\s*(%|users|customers|million|team members|people|projects|dollars|k\b)`)
	dollarMetricRegex = regexp.MustCompile(`\$\s?(\d+(?:,\d{3})*(?:\.\d+)?)`)
)

var bulletMarkers = []string{"•", "-", "*", "·", "▪", "◦"}

// ExtractBullets walks lines in order, tracking the open section and the
// current employer, and returns every achievement bullet with ids
// bullet-0, bullet-1, ... in order of appearance.
func ExtractBullets(lines []string) []types.ResumeBullet {
	voc := vocabulary.Default()

	bullets := make([]types.ResumeBullet, 0)
	section := voc.DefaultSection
	var company, startDate, endDate string

	for _, line := range lines {
		if s, ok := voc.MatchHeader(line); ok {
			section = s
			continue
		}

		text, marked := stripBulletMarker(line)
		firstWord := firstWordOf(text)
		startsWithVerb := voc.IsActionVerb(firstWord)

		if !marked && !startsWithVerb && datedLineRegex.MatchString(line) {
			company = companyFromLine(line, voc)
			startDate, endDate = datesFromLine(line)
			continue
		}

		if !marked && !startsWithVerb {
			continue
		}
		if len(text) <= minBulletLength {
			continue
		}

		b := types.ResumeBullet{
			ID:        fmt.Sprintf("bullet-%d", len(bullets)),
			Section:   section,
			Company:   company,
			StartDate: startDate,
			EndDate:   endDate,
			RawText:   text,
		}
		if startsWithVerb {
			b.Action = strings.Trim(firstWord, ".,;:!?")
		}
		if value, unit, phrase, ok := ExtractMetric(text); ok {
			b.MetricValue = &value
			b.MetricUnit = unit
			b.Impact = phrase
		}
		bullets = append(bullets, b)
	}
	return bullets
}

// stripBulletMarker removes a leading list marker, reporting whether one was present
func stripBulletMarker(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, marker)), true
		}
	}
	return trimmed, false
}

func firstWordOf(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// companyFromLine strips dates and separators from a dated line and returns
// the first part that does not read like a job title, or the last part if
// every part does.
func companyFromLine(line string, voc *vocabulary.Table) string {
	stripped := dateTokenRegex.ReplaceAllString(line, " ")
	for {
		next := strings.TrimSpace(rangeLeftoverRegex.ReplaceAllString(stripped, " "))
		if next == stripped {
			break
		}
		stripped = next
	}

	var parts []string
	for _, p := range companySplitRegex.Split(stripped, -1) {
		p = strings.Trim(p, " \t()[]-–—:")
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	for _, p := range parts {
		if !looksLikeTitle(p, voc) {
			return p
		}
	}
	return parts[len(parts)-1]
}

func looksLikeTitle(s string, voc *vocabulary.Table) bool {
	for _, w := range strings.Fields(s) {
		if voc.IsTitleWord(w) {
			return true
		}
	}
	return false
}

func datesFromLine(line string) (string, string) {
	matches := dateTokenRegex.FindAllString(line, 2)
	switch len(matches) {
	case 0:
		return "", ""
	case 1:
		return matches[0], ""
	default:
		return matches[0], matches[1]
	}
}

// ExtractMetric finds the first quantified result in text: a number followed
// by a unit (%, users, customers, million, k, team members, people, projects,
// dollars) or a dollar amount. It returns the value, the unit and the phrase matched.
func ExtractMetric(text string) (float64, string, string, bool) {
	if m := unitMetricRegex.FindStringSubmatch(text); m != nil {
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
		if err == nil {
			unit := strings.ToLower(m[3])
			if strings.TrimSpace(m[1]) == "$" && unit != "%" {
				unit = "$" + unit
			}
			return value, unit, strings.TrimSpace(m[0]), true
		}
	}
	if m := dollarMetricRegex.FindStringSubmatch(text); m != nil {
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil {
			return value, "$", strings.TrimSpace(m[0]), true
		}
	}
	return 0, "", "", false
}
