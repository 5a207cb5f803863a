// Package sanitize turns upstream HTML snippets into plain display text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips every tag, decodes entities and collapses whitespace.
func Text(s string) string {
	if s == "" {
		return ""
	}
	stripped := html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(stripped), " ")
}

// Truncate shortens s to at most n runes, ending with "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
