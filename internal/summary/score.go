package summary

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// tokenPattern matches runs of word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// stopWords are common English function words ignored by scoring.
var stopWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`
		i me my myself we our ours ourselves you your yours yourself yourselves
		he him his himself she her hers herself it its itself they them their
		theirs themselves what which who whom this that these those am is are
		was were be been being have has had having do does did doing a an the
		and but if or because as until while of at by for with through during
		before after above below up down in out on off over under again further
		then once to from into about against between so than too very can will
		just should now not no nor only own same such both each few more most
		other some any all here there when where why how`) {
		stopWords[w] = true
	}
}

// contentWords lowercases text and returns its alphabetic, non-stop-word tokens.
func contentWords(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	words := tokens[:0]
	for _, tok := range tokens {
		if stopWords[tok] || strings.IndexFunc(tok, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
			continue
		}
		words = append(words, tok)
	}
	return words
}

// WordFrequencies counts content words in text, normalised so the most
// frequent word scores 1.
func WordFrequencies(text string) map[string]float64 {
	counts := make(map[string]int)
	highest := 0
	for _, w := range contentWords(text) {
		counts[w]++
		highest = max(highest, counts[w])
	}

	freq := make(map[string]float64, len(counts))
	for w, n := range counts {
		freq[w] = float64(n) / float64(highest)
	}
	return freq
}

// ScoreSentences returns the mean normalised frequency of each sentence's
// content words. Sentences without content words score 0.
func ScoreSentences(sentences []Sentence, freq map[string]float64) []float64 {
	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		words := contentWords(s.Text)
		if len(words) == 0 {
			continue
		}
		total := 0.0
		for _, w := range words {
			total += freq[w]
		}
		scores[i] = total / float64(len(words))
	}
	return scores
}

// Keyword is a content word with its normalised frequency.
type Keyword struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Keywords returns the n most frequent content words, highest first,
// ties in alphabetical order.
func Keywords(text string, n int) []Keyword {
	if n <= 0 {
		return nil
	}
	freq := WordFrequencies(text)
	keywords := make([]Keyword, 0, len(freq))
	for w, s := range freq {
		keywords = append(keywords, Keyword{Word: w, Score: s})
	}
	slices.SortFunc(keywords, func(a, b Keyword) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return strings.Compare(a.Word, b.Word)
		}
	})
	return keywords[:min(n, len(keywords))]
}
