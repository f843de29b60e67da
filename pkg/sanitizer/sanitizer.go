// Package sanitizer cleans user-supplied text before it is stored.
package sanitizer

import (
	"html"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = sync.OnceValue(bluemonday.StrictPolicy)

// PlainText strips all markup and collapses runs of whitespace into single spaces.
// Entities produced by the policy are decoded so stored text stays human-readable;
// templates escape it again on output.
func PlainText(s string) string {
	stripped := html.UnescapeString(strictPolicy().Sanitize(s))
	return strings.Join(strings.FieldsFunc(stripped, unicode.IsSpace), " ")
}

// DisplayName is PlainText truncated to at most maxRunes runes.
// Control characters are removed.
func DisplayName(s string, maxRunes int) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	clean = PlainText(clean)

	if maxRunes <= 0 || utf8.RuneCountInString(clean) <= maxRunes {
		return clean
	}
	runes := []rune(clean)
	return strings.TrimSpace(string(runes[:maxRunes]))
}

// Email normalizes an email address for lookups: trimmed and lowercased.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
