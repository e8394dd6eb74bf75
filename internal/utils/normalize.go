package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips diacritics, replaces every non-word character
// with a space and collapses whitespace. Vocabulary terms, query tokens and
// property fields must all go through this function or matching degrades.
func Normalize(s string) string {
	folded := StripDiacritics(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if isWordRune(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// StripDiacritics decomposes s (NFD) and drops combining marks, so "baños"
// becomes "banos". Punctuation is preserved.
func StripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FoldToken lowercases and strips diacritics without touching punctuation.
// Used for numeric tokens such as "<=400m" or "1.200.000" that Normalize
// would split apart.
func FoldToken(s string) string {
	return StripDiacritics(strings.ToLower(strings.TrimSpace(s)))
}

// IsNumeric reports whether s is a non-empty run of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// word characters: [A-Za-z0-9_]
func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}
