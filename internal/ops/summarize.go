package ops

import (
	"fmt"

	"github.com/hpungsan/annotext/internal/config"
	"github.com/hpungsan/annotext/internal/errors"
	"github.com/hpungsan/annotext/internal/render"
	"github.com/hpungsan/annotext/internal/report"
	"github.com/hpungsan/annotext/internal/summary"
)

// SummarizeInput contains parameters for the Summarize operation.
type SummarizeInput struct {
	Text         string  // may be empty (yields an empty summary)
	Ratio        float64 // default: cfg.SummaryRatio
	MaxSentences int     // default: cfg.SummaryMaxSentences in leading mode
	Mode         string  // default: cfg.SummaryMode
	Format       string  // json (default), html, markdown, inline
	Keywords     int     // top keywords to include, 0-50
}

// SummarizeOutput contains the result of the Summarize operation.
type SummarizeOutput struct {
	*summary.Summary
	Report   report.SummaryReport `json:"report"`
	Format   render.Format        `json:"format"`
	Rendered string               `json:"rendered,omitempty"`
	Keywords []summary.Keyword    `json:"keywords,omitempty"`
	Notice   *Notice              `json:"notice,omitempty"`
}

// Summarize builds an extractive summary of the input text.
// Text without sentences is not an error: the output is marked empty and
// carries a DEGENERATE_SUMMARY notice.
func Summarize(cfg *config.Config, input SummarizeInput) (*SummarizeOutput, error) {
	if err := checkTextSize(cfg, input.Text); err != nil {
		return nil, err
	}
	if input.Keywords < 0 || input.Keywords > MaxKeywords {
		return nil, errors.NewInvalidInput(fmt.Sprintf("keywords must be between 0 and %d", MaxKeywords))
	}

	mode, err := summary.ParseMode(firstNonEmpty(input.Mode, cfg.SummaryMode))
	if err != nil {
		return nil, err
	}
	format, err := parseFormat(input.Format)
	if err != nil {
		return nil, err
	}

	opts := summary.Options{
		Mode:         mode,
		Ratio:        input.Ratio,
		MaxSentences: input.MaxSentences,
	}
	if opts.Ratio == 0 {
		opts.Ratio = cfg.SummaryRatio
	}
	if opts.MaxSentences == 0 && mode == summary.ModeLeading {
		opts.MaxSentences = cfg.SummaryMaxSentences
	}

	s, err := summary.Summarize(input.Text, opts)
	if err != nil {
		return nil, err
	}

	out := &SummarizeOutput{
		Summary:  s,
		Report:   report.FromSummary(s),
		Format:   format,
		Keywords: summary.Keywords(input.Text, input.Keywords),
	}
	if s.Empty {
		n := noticeFrom(errors.NewDegenerateSummary())
		out.Notice = &n
	}

	switch format {
	case render.FormatHTML:
		html, err := render.SummaryHTML(s)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out.Rendered = html
	case render.FormatMarkdown:
		out.Rendered = render.SummaryMarkdown(s)
	case render.FormatInline:
		out.Rendered = s.Text
	}

	return out, nil
}
