package normalize

import (
	"strings"
	"unicode"
)

// latinFold maps the Latin-1 accented letters that show up in station names
// and OCR output onto their ASCII base letters. Anything not listed here and
// not a letter/digit/space is dropped by Normalize.
var latinFold = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a', 'å': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n', 'ý': 'y',
}

// Normalize canonicalizes a station name for matching: lowercase, strip
// anything outside letters/digits/whitespace, collapse runs of whitespace to
// a single space, trim. Pure and idempotent; ASCII-safe case folding only.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true // leading whitespace is dropped
	for _, r := range strings.ToLower(s) {
		if folded, ok := latinFold[r]; ok {
			r = folded
		}
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
		// punctuation, diacritic leftovers and non-Latin runes are dropped
	}

	return strings.TrimRight(b.String(), " ")
}

// IsBlank reports whether s normalizes to the empty string.
func IsBlank(s string) bool {
	return Normalize(s) == ""
}
