package ops

import (
	"fmt"
	"log/slog"

	"github.com/hpungsan/annotext/internal/config"
	"github.com/hpungsan/annotext/internal/errors"
	"github.com/hpungsan/annotext/internal/render"
	"github.com/hpungsan/annotext/internal/report"
	"github.com/hpungsan/annotext/internal/span"
)

// AnnotateInput contains parameters for the Annotate operation.
type AnnotateInput struct {
	Text     string      // required
	Spans    []span.Span // 0-1000 spans
	Priority string      // default: cfg.ResolvePriority
	Format   string      // json (default), html, markdown, inline
}

// AnnotateOutput contains the result of the Annotate operation.
type AnnotateOutput struct {
	Segments       []span.Segment          `json:"segments"`
	Annotations    []span.Span             `json:"annotations"`
	Unmatched      []span.UnmatchedSpan    `json:"unmatched"`
	Suppressed     []span.Span             `json:"suppressed,omitempty"`
	CategoryCounts map[string]int          `json:"category_counts"`
	Report         report.AnnotationReport `json:"report"`
	Format         render.Format           `json:"format"`
	Rendered       string                  `json:"rendered,omitempty"`
	Notices        []Notice                `json:"notices,omitempty"`
}

// Annotate resolves spans against text and renders the result.
// Unmatched spans are reported, never fatal.
func Annotate(cfg *config.Config, input AnnotateInput) (*AnnotateOutput, error) {
	if err := checkTextSize(cfg, input.Text); err != nil {
		return nil, err
	}
	if len(input.Spans) > MaxSpans {
		return nil, errors.NewInvalidInput(fmt.Sprintf("too many spans: %d (max %d)", len(input.Spans), MaxSpans))
	}

	priority, err := span.ParsePriority(firstNonEmpty(input.Priority, cfg.ResolvePriority))
	if err != nil {
		return nil, err
	}
	format, err := parseFormat(input.Format)
	if err != nil {
		return nil, err
	}

	ann, err := span.Resolve(input.Text, input.Spans, span.Options{Priority: priority})
	if err != nil {
		return nil, err
	}
	if err := ann.Validate(); err != nil {
		return nil, errors.NewInternal(err)
	}

	out := &AnnotateOutput{
		Segments:       ann.Segments,
		Annotations:    ann.Annotations(),
		Unmatched:      ann.Unmatched,
		Suppressed:     ann.Suppressed,
		CategoryCounts: ann.CategoryCounts,
		Report:         report.FromAnnotation(ann),
		Format:         format,
	}
	if out.Unmatched == nil {
		out.Unmatched = []span.UnmatchedSpan{}
	}
	for _, u := range ann.Unmatched {
		slog.Debug("span not matched", "text", u.Span.Text, "category", u.Span.Category, "reason", u.Reason)
		out.Notices = append(out.Notices, noticeFrom(u.Err()))
	}

	switch format {
	case render.FormatHTML:
		out.Rendered = render.HTML(ann)
	case render.FormatMarkdown:
		out.Rendered = render.Markdown(ann)
	case render.FormatInline:
		out.Rendered = render.Inline(ann)
	}

	return out, nil
}
