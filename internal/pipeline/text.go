package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// titleCase lower-cases s and upper-cases the first letter of every
// whitespace separated word. Punctuation does not start a new word, so
// "o'brien-smith" becomes "O'brien-smith".
func titleCase(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	start := true
	for _, r := range s {
		if start && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		start = unicode.IsSpace(r)
	}
	return b.String()
}

// cleanName trims and title-cases a person or place name
func cleanName(s string) string {
	return titleCase(strings.TrimSpace(s))
}

// firstN returns at most n runes of s
func firstN(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
