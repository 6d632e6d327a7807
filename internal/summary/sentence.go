package summary

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentence is one period-terminated fragment of the input.
type Sentence struct {
	// Text is the sentence with whitespace runs collapsed to single spaces,
	// including its terminal period if any
	Text string `json:"text"`

	// Index is the 0-based position among kept sentences
	Index int `json:"index"`

	// Length is the character count (runes, not bytes)
	Length int `json:"length"`
}

// Split segments text on '.' only. Each sentence keeps its terminal period,
// has every whitespace run (line breaks included) collapsed to one space,
// and fragments with nothing but periods and whitespace are
// dropped. Abbreviations, '!' and '?' are not treated as boundaries.
func Split(text string) []Sentence {
	var sentences []Sentence
	rest := text
	for rest != "" {
		var frag string
		if i := strings.IndexByte(rest, '.'); i >= 0 {
			frag, rest = rest[:i+1], rest[i+1:]
		} else {
			frag, rest = rest, ""
		}

		frag = strings.Join(strings.Fields(frag), " ")
		if strings.TrimFunc(frag, isFiller) == "" {
			continue
		}
		sentences = append(sentences, Sentence{
			Text:   frag,
			Index:  len(sentences),
			Length: CountChars(frag),
		})
	}
	return sentences
}

// isFiller reports whether r carries no sentence content on its own.
func isFiller(r rune) bool {
	return r == '.' || unicode.IsSpace(r)
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// CountWords returns the number of whitespace-delimited tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Join concatenates sentence texts with a single space.
func Join(sentences []Sentence) string {
	parts := make([]string, len(sentences))
	for i, s := range sentences {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
