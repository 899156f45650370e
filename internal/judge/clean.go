package judge

import (
	"html"
	"regexp"
	"strings"
)

var (
	reLineBreakTag  = regexp.MustCompile(`(?i)<br\s*/?>`)
	reBlockCloseTag = regexp.MustCompile(`(?i)</(?:div|p)>`)
	reAnyTag        = regexp.MustCompile(`<[^>]+>`)
	reBlankRuns     = regexp.MustCompile(`\n{2,}`)
)

// CleanSampleText turns an HTML fragment from a judge page into plain
// sample text. Line-breaking tags become newlines, remaining markup is
// stripped, entities are decoded and blank-line runs collapse to a single
// newline. Running it on already-clean text is a no-op.
func CleanSampleText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = reLineBreakTag.ReplaceAllString(s, "\n")
	s = reBlockCloseTag.ReplaceAllString(s, "\n")
	s = reAnyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, " ", " ")
	s = reBlankRuns.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
