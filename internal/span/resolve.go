package span

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/annotext/internal/errors"
)

// Priority controls the order in which spans claim character ranges.
type Priority string

const (
	// PriorityLastOccurrence processes spans by descending offset of the last
	// case-sensitive occurrence of their literal (strings.LastIndex), ties in
	// input order. This is the compatibility default; it is a tie-break, not
	// an optimal overlap resolution ("York" beats "New York").
	PriorityLastOccurrence Priority = "last-occurrence"

	// PriorityLongestFirst processes longer literals first, then falls back to
	// the last-occurrence key. Opt-in only.
	PriorityLongestFirst Priority = "longest-first"
)

// ParsePriority validates a priority name. Empty selects the default.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.TrimSpace(s)); p {
	case "":
		return PriorityLastOccurrence, nil
	case PriorityLastOccurrence, PriorityLongestFirst:
		return p, nil
	default:
		return "", errors.NewInvalidInput(fmt.Sprintf("priority must be one of: %s, %s", PriorityLastOccurrence, PriorityLongestFirst))
	}
}

// Options tunes Resolve.
type Options struct {
	Priority Priority
}

// candidate is a located input span waiting to claim its ranges.
type candidate struct {
	span   Span
	order  int // position in the input
	key    int // last-occurrence sort key
	length int // byte length of the literal
	ranges [][2]int
}

// claim is a range taken by an applied span. Claims are kept sorted by start.
type claim struct {
	start, end int
	span       Span
}

// Resolve computes the annotation of text for spans.
//
// Literal-only spans are located with FindWordMatches; spans with explicit
// offsets are validated against text. Spans are then ordered by priority
// and each occurrence claims its range unless it overlaps a range already
// claimed, in which case it is recorded as suppressed. The claimed ranges
// are finally swept left to right into contiguous segments.
//
// Spans that never occur are returned in Unmatched; only empty text is an error.
func Resolve(text string, spans []Span, opts Options) (*Annotation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewEmptyText()
	}
	priority, err := ParsePriority(string(opts.Priority))
	if err != nil {
		return nil, err
	}

	ann := &Annotation{
		Text:           text,
		CategoryCounts: make(map[string]int),
	}

	candidates := make([]candidate, 0, len(spans))
	for i, sp := range spans {
		ranges, reason := locate(text, sp)
		if reason != "" {
			ann.Unmatched = append(ann.Unmatched, UnmatchedSpan{Span: sp, Reason: reason})
			continue
		}
		candidates = append(candidates, candidate{
			span:   sp,
			order:  i,
			key:    sortKey(text, sp),
			length: len(strings.TrimSpace(sp.Text)),
			ranges: ranges,
		})
	}

	sortCandidates(candidates, priority)

	var claims []claim
	for _, c := range candidates {
		for _, r := range c.ranges {
			applied := c.span.at(text, r[0], r[1])
			var ok bool
			claims, ok = insertClaim(claims, claim{start: r[0], end: r[1], span: applied})
			if !ok {
				ann.Suppressed = append(ann.Suppressed, applied)
				continue
			}
			ann.CategoryCounts[applied.Category]++
		}
	}

	ann.Segments = sweep(text, claims)
	return ann, nil
}

// locate returns the candidate ranges of sp in text, or the reason it has none.
func locate(text string, sp Span) ([][2]int, string) {
	if sp.HasOffsets() {
		if sp.Start < 0 || sp.End <= sp.Start || sp.End > len(text) ||
			!utf8.RuneStart(text[sp.Start]) || (sp.End < len(text) && !utf8.RuneStart(text[sp.End])) {
			return nil, ReasonOutOfRange
		}
		if literal := strings.TrimSpace(sp.Text); literal != "" && !strings.EqualFold(text[sp.Start:sp.End], literal) {
			return nil, ReasonTextMismatch
		}
		return [][2]int{{sp.Start, sp.End}}, ""
	}

	if strings.TrimSpace(sp.Text) == "" {
		return nil, ReasonEmptyLiteral
	}
	if !utf8.ValidString(sp.Text) {
		return nil, ReasonInvalidLiteral
	}
	ranges := FindWordMatches(text, sp.Text)
	if len(ranges) == 0 {
		return nil, ReasonNotFound
	}
	return ranges, ""
}

// sortKey mirrors lastIndexOf on the raw literal; explicit spans use Start.
func sortKey(text string, sp Span) int {
	if sp.HasOffsets() {
		return sp.Start
	}
	return strings.LastIndex(text, strings.TrimSpace(sp.Text))
}

// sortCandidates orders candidates by priority. The sort is stable, so equal
// keys keep input order.
func sortCandidates(cs []candidate, p Priority) {
	slices.SortStableFunc(cs, func(a, b candidate) int {
		if p == PriorityLongestFirst {
			if c := cmp.Compare(b.length, a.length); c != 0 {
				return c
			}
		}
		return cmp.Compare(b.key, a.key)
	})
}

// insertClaim adds c to the sorted claims unless it overlaps an existing one.
func insertClaim(claims []claim, c claim) ([]claim, bool) {
	i, _ := slices.BinarySearchFunc(claims, c.start, func(e claim, start int) int {
		return cmp.Compare(e.start, start)
	})
	if i > 0 && claims[i-1].end > c.start {
		return claims, false
	}
	if i < len(claims) && claims[i].start < c.end {
		return claims, false
	}
	return slices.Insert(claims, i, c), true
}

// sweep turns sorted, disjoint claims into segments covering all of text.
func sweep(text string, claims []claim) []Segment {
	segments := make([]Segment, 0, 2*len(claims)+1)
	pos := 0
	for _, c := range claims {
		if c.start > pos {
			segments = append(segments, Segment{Start: pos, End: c.start, Text: text[pos:c.start]})
		}
		sp := c.span
		segments = append(segments, Segment{Start: c.start, End: c.end, Text: text[c.start:c.end], Span: &sp})
		pos = c.end
	}
	if pos < len(text) {
		segments = append(segments, Segment{Start: pos, End: len(text), Text: text[pos:]})
	}
	return segments
}
