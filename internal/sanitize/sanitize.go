// Package sanitize cleans model output before it is returned to callers.
package sanitize

import (
	"regexp"
	"strings"
)

const (
	openTag  = "<thinking>"
	closeTag = "</thinking>"
)

var (
	carriageReturns = regexp.MustCompile(`\r+\n`)
	leadingSpace    = regexp.MustCompile(`(?m)^[^\S\n]+`)
	excessBlankRuns = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips <thinking> spans, turns literal "\n" sequences into line
// breaks, removes indentation, collapses runs of blank lines to one and trims
// the result. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	cleaned := stripThinking(text)

	cleaned = strings.ReplaceAll(cleaned, `\n`, "\n")
	cleaned = carriageReturns.ReplaceAllString(cleaned, "\n")
	cleaned = leadingSpace.ReplaceAllString(cleaned, "")
	cleaned = excessBlankRuns.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}

// stripThinking removes every open/close pair, innermost first, so nested
// markers go with their enclosing span. Unpaired markers are left alone.
func stripThinking(s string) string {
	from := 0
	for {
		rel := strings.Index(s[from:], closeTag)
		if rel < 0 {
			return s
		}
		end := from + rel
		start := strings.LastIndex(s[:end], openTag)
		if start < 0 {
			from = end + len(closeTag)
			continue
		}
		s = s[:start] + s[end+len(closeTag):]
	}
}
