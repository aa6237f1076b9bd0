package usecase

import (
	"strings"
	"unicode/utf8"
)

// NormalizeQuery trims the text and collapses inner whitespace runs to a single space.
// Case is preserved; the catalog matches case-insensitively.
func NormalizeQuery(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// QueryLength counts characters, not bytes, of the normalized query
func QueryLength(text string) int {
	return utf8.RuneCountInString(NormalizeQuery(text))
}
