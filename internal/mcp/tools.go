package mcp

import "github.com/mark3labs/mcp-go/mcp"

var annotateToolDef = mcp.NewTool("text_annotate",
	mcp.WithDescription("Mark entity spans in text. Each span's literal is matched case-insensitively at word "+
		"boundaries; overlapping spans are resolved by priority. Returns contiguous segments covering the whole "+
		"text, the applied annotations, per-category counts, and spans that never matched."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to annotate"),
	),
	mcp.WithArray("spans",
		mcp.Description("Spans to apply. Give start/end byte offsets to pin a span to one occurrence."),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":        map[string]any{"type": "string", "description": "Literal to find"},
				"category":    map[string]any{"type": "string", "description": "Category label, e.g. PERSON"},
				"description": map[string]any{"type": "string", "description": "Free-form description"},
				"start":       map[string]any{"type": "integer", "description": "Start byte offset (optional)"},
				"end":         map[string]any{"type": "integer", "description": "End byte offset, exclusive (optional)"},
			},
			"required": []string{"text", "category"},
		}),
	),
	mcp.WithString("priority",
		mcp.Description("Which span wins an overlap: last-occurrence (default) or longest-first"),
		mcp.Enum("last-occurrence", "longest-first"),
	),
	mcp.WithString("format",
		mcp.Description("Rendered output: json (none, default), html, markdown, inline"),
		mcp.Enum("json", "html", "markdown", "inline"),
	),
)

var summarizeToolDef = mcp.NewTool("text_summarize",
	mcp.WithDescription("Build an extractive summary by selecting whole sentences in their original order. "+
		"Text without sentences yields an empty summary with a DEGENERATE_SUMMARY notice."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to summarize"),
	),
	mcp.WithString("mode",
		mcp.Description("Selection mode: leading (default, first sentences), ratio (leading sentences up to ratio × length), scored (highest word-frequency sentences)"),
		mcp.Enum("leading", "ratio", "scored"),
	),
	mcp.WithNumber("ratio",
		mcp.Description("Target compression in (0, 1] (default 0.3)"),
	),
	mcp.WithNumber("max_sentences",
		mcp.Description("Maximum sentences to select (default 3 in leading mode)"),
	),
	mcp.WithNumber("keywords",
		mcp.Description("Number of top keywords to include (0-50, default 0)"),
	),
	mcp.WithString("format",
		mcp.Description("Rendered output: json (none, default), html, markdown, inline"),
		mcp.Enum("json", "html", "markdown", "inline"),
	),
)

var reportToolDef = mcp.NewTool("text_report",
	mcp.WithDescription("Filter and format named scores (e.g. sentiment or emotion) for display. "+
		"Scores at or below the threshold are hidden; the rest are sorted highest first."),
	mcp.WithObject("scores",
		mcp.Required(),
		mcp.Description("Map of score name to numeric value"),
	),
	mcp.WithNumber("threshold",
		mcp.Description("Hide scores at or below this value (default from config, usually 0)"),
	),
)
