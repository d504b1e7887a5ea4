// Package strcase converts identifiers between naming conventions.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts CamelCase, mixedCase and acronym-heavy names such as
// "APIKey" or "phoneNumber" to snake_case ("api_key", "phone_number").
// Existing underscores and hyphens are treated as word separators.
func ToLowerSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if r == '-' || r == ' ' {
			r = '_'
		}

		if i > 0 && unicode.IsUpper(r) && boundary(runes, i) {
			b.WriteByte('_')
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// boundary reports whether an upper-case rune at i starts a new word.
func boundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}

	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
