package span

import (
	"fmt"
	"strings"

	"github.com/hpungsan/annotext/internal/errors"
)

// Span is a labeled occurrence of literal text within a larger document.
// Start and End are half-open byte offsets into the original text.
// A Span with Start == End == 0 is a literal-only triple and is located
// by Resolve.
type Span struct {
	// Text is the literal as supplied, or the matched original text once resolved
	Text string `json:"text"`

	// Category is an open label such as PERSON, ORGANIZATION or LOCATION
	Category string `json:"category"`

	// Description is free-form metadata rendered alongside the span
	Description string `json:"description,omitempty"`

	Start int `json:"start"`
	End   int `json:"end"`
}

// Literal creates a literal-only span to be located by Resolve.
func Literal(text, category, description string) Span {
	return Span{Text: text, Category: category, Description: description}
}

// HasOffsets reports whether the span carries explicit offsets.
func (s Span) HasOffsets() bool {
	return s.Start != 0 || s.End != 0
}

// at returns a copy of s positioned at [start, end) of text.
func (s Span) at(text string, start, end int) Span {
	s.Text = text[start:end]
	s.Start = start
	s.End = end
	return s
}

// Segment is one contiguous piece of a resolved annotation.
// Span is nil for plain passthrough text.
type Segment struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
	Span  *Span  `json:"span,omitempty"`
}

// Annotated reports whether the segment carries a span.
func (s Segment) Annotated() bool {
	return s.Span != nil
}

// Reasons a span can be reported back as unmatched.
const (
	ReasonNotFound       = "not_found"
	ReasonEmptyLiteral   = "empty_literal"
	ReasonOutOfRange     = "out_of_range"
	ReasonTextMismatch   = "text_mismatch"
	ReasonInvalidLiteral = "invalid_literal"
)

// UnmatchedSpan is an input span that produced no annotation at all.
type UnmatchedSpan struct {
	Span   Span   `json:"span"`
	Reason string `json:"reason"`
}

// Err converts the entry into a non-fatal UNMATCHED_SPAN error value.
func (u UnmatchedSpan) Err() *errors.AnnotextError {
	return errors.NewUnmatchedSpan(u.Span.Text, u.Reason)
}

// Annotation is the resolved form of a text: an ordered, contiguous,
// non-overlapping segment list covering the whole text exactly once.
type Annotation struct {
	Text     string    `json:"-"`
	Segments []Segment `json:"segments"`

	// Unmatched lists spans whose literal never occurs in the text
	Unmatched []UnmatchedSpan `json:"unmatched,omitempty"`

	// Suppressed lists occurrences dropped because an earlier span
	// already claimed an overlapping range
	Suppressed []Span `json:"suppressed,omitempty"`

	// CategoryCounts maps category to the number of applied annotations
	CategoryCounts map[string]int `json:"category_counts"`
}

// Annotations returns the applied spans in text order.
func (a *Annotation) Annotations() []Span {
	spans := make([]Span, 0, len(a.Segments))
	for _, seg := range a.Segments {
		if seg.Span != nil {
			spans = append(spans, *seg.Span)
		}
	}
	return spans
}

// Reconstruct concatenates the segment texts in order.
func (a *Annotation) Reconstruct() string {
	var b strings.Builder
	b.Grow(len(a.Text))
	for _, seg := range a.Segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Validate checks the segment invariants: sorted, contiguous, covering
// [0, len(Text)), each segment text matching its range, and annotated
// segments carrying a span with the same offsets.
func (a *Annotation) Validate() error {
	pos := 0
	for i, seg := range a.Segments {
		if seg.Start != pos {
			return fmt.Errorf("segment %d starts at %d, want %d", i, seg.Start, pos)
		}
		if seg.End <= seg.Start || seg.End > len(a.Text) {
			return fmt.Errorf("segment %d has invalid range [%d, %d)", i, seg.Start, seg.End)
		}
		if a.Text[seg.Start:seg.End] != seg.Text {
			return fmt.Errorf("segment %d text does not match its range", i)
		}
		if seg.Span != nil && (seg.Span.Start != seg.Start || seg.Span.End != seg.End) {
			return fmt.Errorf("segment %d span offsets differ from segment range", i)
		}
		pos = seg.End
	}
	if pos != len(a.Text) {
		return fmt.Errorf("segments cover [0, %d), want [0, %d)", pos, len(a.Text))
	}
	return nil
}
