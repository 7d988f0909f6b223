package html

import (
	"regexp"
	"strings"
)

// Compiled once; a bad pattern panics at start-up.
var (
	horizontalRuns = regexp.MustCompile(`[ \t\f\v\r\p{Zs}]{2,}`)
	blankStretches = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// normalizeWhitespace collapses horizontal runs to one space, squeezes
// blank stretches, trims every line and drops the empty ones.
func normalizeWhitespace(text string) string {
	text = horizontalRuns.ReplaceAllString(text, " ")
	text = blankStretches.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
