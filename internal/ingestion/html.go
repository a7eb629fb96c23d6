package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var htmlTagRegex = regexp.MustCompile(`(?i)<\s*(html|body|div|p|ul|ol|li|h[1-6]|br|span|section|article|table)\b[^>]*>`)

// blockTags start a new line when rendered as text
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "footer": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tr": true, "ul": true,
}

// LooksLikeHTML reports whether the input contains common HTML block markup
func LooksLikeHTML(s string) bool {
	return htmlTagRegex.MatchString(s)
}

// HTMLToText renders an HTML document as line-oriented plain text.
// List items become "• " bullets so the job parser recognizes them.
func HTMLToText(doc string) (string, error) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	parsed.Find("script, style, noscript, nav, iframe, svg, .cookie-banner, .popup").Remove()

	root := parsed.Find("body")
	if root.Length() == 0 {
		root = parsed.Selection
	}

	var sb strings.Builder
	for _, n := range root.Nodes {
		writeNode(&sb, n)
	}

	lines := strings.Split(sb.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" && line != "•" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

func writeNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		// Keep a separator where the source had whitespace; lines are collapsed later
		sb.WriteString(" ")
		sb.WriteString(strings.Join(strings.Fields(n.Data), " "))
		sb.WriteString(" ")
		return
	case html.ElementNode:
		block := blockTags[n.Data]
		if n.Data == "li" {
			sb.WriteString("\n• ")
		} else if block {
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(sb, c)
		}
		if block {
			sb.WriteString("\n")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(sb, c)
	}
}
