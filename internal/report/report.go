// Package report turns resolved annotations and summaries into display
// metrics. Formatting is fixed: percentages carry one decimal, raw scores three.
package report

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/hpungsan/annotext/internal/span"
	"github.com/hpungsan/annotext/internal/summary"
)

// CategoryCount is one row of a category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Percent  string `json:"percent"`
}

// AnnotationReport summarizes a resolved annotation.
type AnnotationReport struct {
	TotalAnnotations   int             `json:"total_annotations"`
	DistinctCategories int             `json:"distinct_categories"`
	Categories         []CategoryCount `json:"categories"`
	UnmatchedSpans     int             `json:"unmatched_spans"`
	SuppressedSpans    int             `json:"suppressed_spans"`
}

// SummaryReport summarizes an extractive summary.
type SummaryReport struct {
	SentencesUsed      int     `json:"sentences_used"`
	TotalSentences     int     `json:"total_sentences"`
	OriginalWordCount  int     `json:"original_word_count"`
	SummaryWordCount   int     `json:"summary_word_count"`
	CompressionRatio   float64 `json:"compression_ratio"`
	CompressionPercent string  `json:"compression_percent"`
	Empty              bool    `json:"empty"`
}

// ScoreEntry is a named score that passed the display threshold.
type ScoreEntry struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Formatted string  `json:"formatted"`
}

// FromAnnotation builds the category breakdown of a. Categories are ordered
// by count descending, then name.
func FromAnnotation(a *span.Annotation) AnnotationReport {
	r := AnnotationReport{
		Categories:      []CategoryCount{},
		UnmatchedSpans:  len(a.Unmatched),
		SuppressedSpans: len(a.Suppressed),
	}
	for _, n := range a.CategoryCounts {
		r.TotalAnnotations += n
	}
	for category, n := range a.CategoryCounts {
		if n == 0 {
			continue
		}
		r.Categories = append(r.Categories, CategoryCount{
			Category: category,
			Count:    n,
			Percent:  Percent(float64(n) / float64(r.TotalAnnotations)),
		})
	}
	slices.SortFunc(r.Categories, func(x, y CategoryCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Category, y.Category)
	})
	r.DistinctCategories = len(r.Categories)
	return r
}

// FromSummary extracts the display metrics of s.
func FromSummary(s *summary.Summary) SummaryReport {
	return SummaryReport{
		SentencesUsed:      s.SentencesUsed,
		TotalSentences:     s.TotalSentences,
		OriginalWordCount:  s.OriginalWordCount,
		SummaryWordCount:   s.SummaryWordCount,
		CompressionRatio:   s.CompressionRatio,
		CompressionPercent: Percent(s.CompressionRatio),
		Empty:              s.Empty,
	}
}

// FilterScores keeps scores strictly above threshold, highest first, ties by
// name. It hides near-zero entries in sentiment and emotion displays.
func FilterScores(scores map[string]float64, threshold float64) []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(scores))
	for name, s := range scores {
		if math.IsNaN(s) || s <= threshold {
			continue
		}
		entries = append(entries, ScoreEntry{Name: name, Score: s, Formatted: Score(s)})
	}
	slices.SortFunc(entries, func(x, y ScoreEntry) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		return cmp.Compare(x.Name, y.Name)
	})
	return entries
}

// Percent formats a fraction as a percentage with one decimal: 0.1234 → "12.3%".
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// Score formats a raw score with three decimals: 0.5 → "0.500".
func Score(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
