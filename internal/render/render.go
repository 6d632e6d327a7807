// Package render turns resolved annotations and summaries into marked-up
// output. All caller text is escaped; only the wrapping markup is trusted.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/annotext/internal/span"
	"github.com/hpungsan/annotext/internal/summary"
)

// Format names an output representation.
type Format string

const (
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatInline   Format = "inline"
)

// ParseFormat validates a format name. Empty selects FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatHTML, FormatMarkdown, FormatInline:
		return f, nil
	default:
		return "", fmt.Errorf("format must be one of: json, html, markdown, inline")
	}
}

// slugPattern matches runs of characters not allowed in a CSS class suffix.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// classSlug lowercases category into a CSS-safe class suffix.
func classSlug(category string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(category), "-"), "-")
	if slug == "" {
		return "other"
	}
	return slug
}

// HTML wraps each annotated segment in a <mark> element carrying its
// category and description. Plain segments are escaped passthrough.
func HTML(a *span.Annotation) string {
	var b strings.Builder
	for _, seg := range a.Segments {
		if seg.Span == nil {
			b.WriteString(template.HTMLEscapeString(seg.Text))
			continue
		}
		fmt.Fprintf(&b, `<mark class="entity entity-%s" data-category="%s"`,
			classSlug(seg.Span.Category), template.HTMLEscapeString(seg.Span.Category))
		if seg.Span.Description != "" {
			fmt.Fprintf(&b, ` title="%s"`, template.HTMLEscapeString(seg.Span.Description))
		}
		b.WriteString(">")
		b.WriteString(template.HTMLEscapeString(seg.Text))
		b.WriteString("</mark>")
	}
	return b.String()
}

// Inline renders annotated segments as [text](CATEGORY) for terminals.
func Inline(a *span.Annotation) string {
	var b strings.Builder
	for _, seg := range a.Segments {
		if seg.Span == nil {
			b.WriteString(seg.Text)
			continue
		}
		fmt.Fprintf(&b, "[%s](%s)", seg.Text, seg.Span.Category)
	}
	return b.String()
}

// markdownEscaper escapes inline Markdown metacharacters.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
)

// blockMarkerPattern matches text that would open a block at the start of
// any line: headings, list markers, setext underlines, ordered list numbers.
// The marker is always the last byte of a match.
var blockMarkerPattern = regexp.MustCompile(`(?m)^[ \t]*(#|[-+=]|\d+[.)])`)

// escapeMarkdown escapes s for use as inline Markdown text.
func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(s)
	return blockMarkerPattern.ReplaceAllStringFunc(s, func(m string) string {
		return m[:len(m)-1] + `\` + m[len(m)-1:]
	})
}

// Markdown renders annotated segments as **text**<sup>CATEGORY</sup>.
func Markdown(a *span.Annotation) string {
	var b strings.Builder
	for _, seg := range a.Segments {
		if seg.Span == nil {
			b.WriteString(escapeMarkdown(seg.Text))
			continue
		}
		fmt.Fprintf(&b, "**%s**<sup>%s</sup>",
			escapeMarkdown(seg.Text), template.HTMLEscapeString(seg.Span.Category))
	}
	return b.String()
}

// SummaryMarkdown renders the selected sentences as a bullet list.
func SummaryMarkdown(s *summary.Summary) string {
	var b strings.Builder
	for _, sent := range s.Sentences {
		b.WriteString("- ")
		b.WriteString(escapeMarkdown(sent.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// SummaryHTML converts SummaryMarkdown to HTML using goldmark.
func SummaryHTML(s *summary.Summary) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(SummaryMarkdown(s)), &buf); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return buf.String(), nil
}
