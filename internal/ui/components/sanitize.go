package components

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscPattern  = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

var bidiControls = map[rune]struct{}{
	'\u202a': {},
	'\u202b': {},
	'\u202c': {},
	'\u202d': {},
	'\u202e': {},
	'\u2066': {},
	'\u2067': {},
	'\u2068': {},
	'\u2069': {},
	'\u200e': {},
	'\u200f': {},
}

// SanitizeText strips control characters and escape sequences from display
// strings. Newlines and tabs survive.
func SanitizeText(input string) string {
	if input == "" {
		return input
	}
	cleaned := oscPattern.ReplaceAllString(input, "")
	cleaned = ansiPattern.ReplaceAllString(cleaned, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if _, ok := bidiControls[r]; ok {
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, cleaned)
}

// SanitizeOneLine is SanitizeText with all whitespace runs collapsed to a
// single space.
func SanitizeOneLine(input string) string {
	return strings.TrimSpace(spaceRuns.ReplaceAllString(SanitizeText(input), " "))
}

// Snippet returns the first n runes of text on one line, or fallback when
// text is blank.
func Snippet(text string, n int, fallback string) string {
	line := SanitizeOneLine(text)
	if line == "" {
		return fallback
	}
	if n > 0 && len([]rune(line)) > n {
		return truncateRunes(line, n) + "..."
	}
	return line
}
