package summary

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/hpungsan/annotext/internal/errors"
)

// Defaults applied when Options fields are zero.
const (
	DefaultRatio        = 0.3
	DefaultMaxSentences = 3
)

// Mode selects how sentences are picked.
type Mode string

const (
	// ModeLeading takes the first MaxSentences sentences (default 3). The
	// ratio is validated but does not affect the selection.
	ModeLeading Mode = "leading"

	// ModeRatio takes leading sentences until the summary's character length
	// first reaches ratio × the text's character length.
	ModeRatio Mode = "ratio"

	// ModeScored ranks sentences by mean word frequency and keeps the top
	// max(1, int(total × ratio)), re-emitted in original order.
	ModeScored Mode = "scored"
)

// ParseMode validates a mode name. Empty selects ModeLeading.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.TrimSpace(s)); m {
	case "":
		return ModeLeading, nil
	case ModeLeading, ModeRatio, ModeScored:
		return m, nil
	default:
		return "", errors.NewInvalidInput(fmt.Sprintf("mode must be one of: %s, %s, %s", ModeLeading, ModeRatio, ModeScored))
	}
}

// Options tunes Summarize.
type Options struct {
	Mode Mode

	// Ratio is the target compression in (0, 1]; 0 means DefaultRatio
	Ratio float64

	// MaxSentences caps the selection; 0 means DefaultMaxSentences in
	// leading mode and no extra cap in the other modes
	MaxSentences int
}

// Summary is the result of an extractive summarization.
//
// CompressionRatio is summary characters ÷ original characters, while the
// length fields count words. The mix of units is intentional and matches
// what display code expects.
type Summary struct {
	Sentences         []Sentence `json:"selected_sentences"`
	Text              string     `json:"summary"`
	OriginalWordCount int        `json:"original_word_count"`
	SummaryWordCount  int        `json:"summary_word_count"`
	CompressionRatio  float64    `json:"compression_ratio"`
	SentencesUsed     int        `json:"sentences_used"`
	TotalSentences    int        `json:"total_sentences"`
	Mode              Mode       `json:"mode"`
	Ratio             float64    `json:"ratio"`

	// Empty is set when no sentences were found; all metrics are zero
	Empty bool `json:"empty"`
}

// Summarize selects sentences from text according to opts.
// Text without sentences yields an empty, valid Summary rather than an error;
// only out-of-range options are rejected.
func Summarize(text string, opts Options) (*Summary, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	ratio := opts.Ratio
	if ratio == 0 {
		ratio = DefaultRatio
	}
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return nil, errors.NewInvalidInput("ratio must be in (0, 1]")
	}
	if opts.MaxSentences < 0 {
		return nil, errors.NewInvalidInput("max_sentences must not be negative")
	}

	sentences := Split(text)
	result := &Summary{
		Sentences:         []Sentence{},
		OriginalWordCount: CountWords(text),
		TotalSentences:    len(sentences),
		Mode:              mode,
		Ratio:             ratio,
	}
	if len(sentences) == 0 {
		result.OriginalWordCount = 0
		result.Empty = true
		return result, nil
	}

	var selected []Sentence
	switch mode {
	case ModeRatio:
		selected = selectByRatio(sentences, ratio, CountChars(text), opts.MaxSentences)
	case ModeScored:
		selected = selectByScore(sentences, text, ratio, opts.MaxSentences)
	default:
		limit := opts.MaxSentences
		if limit == 0 {
			limit = DefaultMaxSentences
		}
		selected = sentences[:min(limit, len(sentences))]
	}

	result.Sentences = slices.Clone(selected)
	result.Text = Join(selected)
	result.SentencesUsed = len(selected)
	result.SummaryWordCount = CountWords(result.Text)
	result.CompressionRatio = float64(CountChars(result.Text)) / float64(CountChars(text))
	return result, nil
}

// selectByRatio takes leading sentences until the joined length reaches the
// target. At least one sentence is always taken.
func selectByRatio(sentences []Sentence, ratio float64, textChars, maxSentences int) []Sentence {
	target := ratio * float64(textChars)
	length := 0
	n := 0
	for n < len(sentences) {
		if n > 0 {
			length++ // joining space
		}
		length += sentences[n].Length
		n++
		if float64(length) >= target {
			break
		}
		if maxSentences > 0 && n >= maxSentences {
			break
		}
	}
	return sentences[:n]
}

// selectByScore keeps the highest scoring sentences in original order.
func selectByScore(sentences []Sentence, text string, ratio float64, maxSentences int) []Sentence {
	k := max(1, int(float64(len(sentences))*ratio))
	if maxSentences > 0 && k > maxSentences {
		k = maxSentences
	}

	scores := ScoreSentences(sentences, WordFrequencies(text))
	ranked := make([]int, len(sentences))
	for i := range ranked {
		ranked[i] = i
	}
	slices.SortStableFunc(ranked, func(a, b int) int {
		switch {
		case scores[a] > scores[b]:
			return -1
		case scores[a] < scores[b]:
			return 1
		default:
			return a - b
		}
	})

	top := ranked[:k]
	slices.Sort(top)
	selected := make([]Sentence, len(top))
	for i, idx := range top {
		selected[i] = sentences[idx]
	}
	return selected
}
