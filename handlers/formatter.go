package handlers

import (
	"regexp"
	"strings"
)

// Model output often arrives as one run-on line. These rules re-introduce the
// structure a chat UI expects. Purely cosmetic, no semantic validation.
var (
	extraSpacesRe   = regexp.MustCompile(`[ \t]{2,}`)
	numberedItemRe  = regexp.MustCompile(`([^\n])[ \t]+(\d+\.\s)`)
	bulletItemRe    = regexp.MustCompile(`([^\n])[ \t]+([-*•]\s)`)
	boldSpanRe      = regexp.MustCompile(`([^\n])[ \t]+(\*\*[^*\n]+\*\*)`)
	questionBreakRe = regexp.MustCompile(`\?[ \t\n]+([A-Z])`)
	manyNewlinesRe  = regexp.MustCompile(`\n{3,}`)
)

// FormatResponse normalizes generated text into a readable structure: line
// breaks before list markers and bold spans, a paragraph break after a
// question, and at most two consecutive newlines. A second pass over its own
// output leaves the text unchanged.
func FormatResponse(text string) string {
	text = extraSpacesRe.ReplaceAllString(text, " ")
	text = numberedItemRe.ReplaceAllString(text, "$1\n$2")
	text = bulletItemRe.ReplaceAllString(text, "$1\n$2")
	text = boldSpanRe.ReplaceAllString(text, "$1\n$2")
	text = questionBreakRe.ReplaceAllString(text, "?\n\n$1")
	text = manyNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
