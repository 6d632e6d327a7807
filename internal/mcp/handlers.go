package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/annotext/internal/config"
	"github.com/hpungsan/annotext/internal/errors"
	"github.com/hpungsan/annotext/internal/ops"
	"github.com/hpungsan/annotext/internal/span"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{cfg: cfg}
}

// Request types for each tool

// AnnotateRequest represents the arguments for text_annotate.
type AnnotateRequest struct {
	Text     string      `json:"text"`
	Spans    []span.Span `json:"spans,omitempty"`
	Priority string      `json:"priority,omitempty"`
	Format   string      `json:"format,omitempty"`
}

// SummarizeRequest represents the arguments for text_summarize.
type SummarizeRequest struct {
	Text         string  `json:"text"`
	Mode         string  `json:"mode,omitempty"`
	Ratio        float64 `json:"ratio,omitempty"`
	MaxSentences int     `json:"max_sentences,omitempty"`
	Keywords     int     `json:"keywords,omitempty"`
	Format       string  `json:"format,omitempty"`
}

// ReportRequest represents the arguments for text_report.
type ReportRequest struct {
	Scores    map[string]float64 `json:"scores"`
	Threshold *float64           `json:"threshold,omitempty"`
}

// HandleAnnotate handles the text_annotate tool call.
func (h *Handlers) HandleAnnotate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AnnotateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.Annotate(h.cfg, ops.AnnotateInput{
		Text:     input.Text,
		Spans:    input.Spans,
		Priority: input.Priority,
		Format:   input.Format,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSummarize handles the text_summarize tool call.
func (h *Handlers) HandleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SummarizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.Summarize(h.cfg, ops.SummarizeInput{
		Text:         input.Text,
		Ratio:        input.Ratio,
		MaxSentences: input.MaxSentences,
		Mode:         input.Mode,
		Format:       input.Format,
		Keywords:     input.Keywords,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleReport handles the text_report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	threshold := h.cfg.Threshold()
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	result, err := ops.Report(ops.ReportInput{
		Scores:    input.Scores,
		Threshold: threshold,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var aErr *errors.AnnotextError
	if stderrors.As(err, &aErr) {
		// Keep wrapper context ("spans[2]: ...") in front of the message
		message := aErr.Message
		if err != error(aErr) {
			message = strings.Replace(err.Error(), aErr.Error(), aErr.Message, 1)
		}
		errorObj := map[string]any{
			"code":    aErr.Code,
			"message": message,
			"status":  aErr.Status,
		}
		if aErr.Code != errors.ErrInternal && len(aErr.Details) > 0 {
			errorObj["details"] = aErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
