package utils

import (
	"strings"
	"unicode"
)

// SanitizeQuery normalizes a free-text search term: trimmed, control
// characters stripped, collapsed internal whitespace.
func SanitizeQuery(query string) string {
	query = removeControlChars(strings.TrimSpace(query))

	return strings.Join(strings.Fields(query), " ")
}

func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
