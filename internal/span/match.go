package span

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// isWordRune reports whether r counts as a word character for boundary checks.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// literalPattern builds a case-insensitive pattern matching literal as plain text.
// Every regex metacharacter in the literal is escaped. Compilation fails only
// when literal is not valid UTF-8.
func literalPattern(literal string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)` + regexp.QuoteMeta(literal))
}

// wordBounded reports whether text[start:end] is preceded and followed by a
// non-word rune or a string edge.
func wordBounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// FindWordMatches returns the byte ranges [start, end) of every
// case-insensitive, word-bounded occurrence of literal in text, in order and
// non-overlapping. Leading and trailing whitespace of literal is ignored.
// A hit that fails the boundary check resumes the search one rune later,
// so "cat" still matches in "xcat cat". A literal that is not valid UTF-8
// never matches.
func FindWordMatches(text, literal string) [][2]int {
	literal = strings.TrimSpace(literal)
	if literal == "" {
		return nil
	}

	re, err := literalPattern(literal)
	if err != nil {
		return nil
	}

	var matches [][2]int
	pos := 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && wordBounded(text, start, end) {
			matches = append(matches, [2]int{start, end})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return matches
}
