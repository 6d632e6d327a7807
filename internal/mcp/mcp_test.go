package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/annotext/internal/config"
	"github.com/hpungsan/annotext/internal/errors"
)

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleAnnotate(t *testing.T) {
	h := NewHandlers(config.DefaultConfig())
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "annotate with spans",
			args: map[string]any{
				"text": "Apple released new Apple Watch.",
				"spans": []any{
					map[string]any{"text": "Apple", "category": "ORG", "description": "A tech company"},
				},
			},
			wantError: false,
		},
		{
			name: "annotate with explicit offsets and html",
			args: map[string]any{
				"text":   "Apple released new Apple Watch.",
				"spans":  []any{map[string]any{"text": "Apple", "category": "ORG", "start": 19, "end": 24}},
				"format": "html",
			},
			wantError: false,
		},
		{
			name:      "annotate without text",
			args:      map[string]any{"spans": []any{}},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
		{
			name:      "annotate with bad priority",
			args:      map[string]any{"text": "x", "priority": "shortest"},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
		{
			name:      "annotate with wrong span type",
			args:      map[string]any{"text": "x", "spans": "Apple"},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
		{
			name:      "annotate with unknown argument",
			args:      map[string]any{"text": "x", "span": []any{}},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleAnnotate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

func TestHandleAnnotate_Output(t *testing.T) {
	h := NewHandlers(config.DefaultConfig())

	result, err := h.HandleAnnotate(context.Background(), makeRequest(map[string]any{
		"text": "Tim Cook visited Paris.",
		"spans": []any{
			map[string]any{"text": "Tim Cook", "category": "PERSON"},
			map[string]any{"text": "London", "category": "LOCATION"},
		},
		"format": "inline",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)

	if got := output["rendered"]; got != "[Tim Cook](PERSON) visited Paris." {
		t.Errorf("rendered = %v, want %q", got, "[Tim Cook](PERSON) visited Paris.")
	}
	annotations := output["annotations"].([]any)
	if len(annotations) != 1 {
		t.Errorf("annotations length = %d, want 1", len(annotations))
	}
	unmatched := output["unmatched"].([]any)
	if len(unmatched) != 1 {
		t.Fatalf("unmatched length = %d, want 1", len(unmatched))
	}
	if reason := unmatched[0].(map[string]any)["reason"]; reason != "not_found" {
		t.Errorf("unmatched reason = %v, want not_found", reason)
	}
	counts := output["category_counts"].(map[string]any)
	if counts["PERSON"] != float64(1) {
		t.Errorf("category_counts[PERSON] = %v, want 1", counts["PERSON"])
	}
}

func TestHandleAnnotate_TextTooLarge(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxTextChars = 10
	h := NewHandlers(cfg)

	result, err := h.HandleAnnotate(context.Background(), makeRequest(map[string]any{
		"text": strings.Repeat("word ", 5),
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, result, "TEXT_TOO_LARGE")
}

func TestHandleSummarize(t *testing.T) {
	h := NewHandlers(config.DefaultConfig())
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "summarize defaults",
			args:      map[string]any{"text": "A. B. C. D. E."},
			wantError: false,
		},
		{
			name:      "summarize ratio mode with keywords",
			args:      map[string]any{"text": "One two. Three four five. Six.", "mode": "ratio", "ratio": 0.5, "keywords": 3},
			wantError: false,
		},
		{
			name:      "summarize empty text",
			args:      map[string]any{"text": ""},
			wantError: false,
		},
		{
			name:      "summarize with ratio out of range",
			args:      map[string]any{"text": "A. B.", "ratio": 1.5},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
		{
			name:      "summarize with unknown mode",
			args:      map[string]any{"text": "A. B.", "mode": "abstractive"},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
		{
			name:      "summarize with string ratio",
			args:      map[string]any{"text": "A. B.", "ratio": "half"},
			wantError: true,
			errorCode: "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleSummarize(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

func TestHandleSummarize_Output(t *testing.T) {
	h := NewHandlers(config.DefaultConfig())

	result, err := h.HandleSummarize(context.Background(), makeRequest(map[string]any{
		"text":   "A. B. C. D. E.",
		"format": "markdown",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)

	if output["summary"] != "A. B. C." {
		t.Errorf("summary = %v, want %q", output["summary"], "A. B. C.")
	}
	if output["sentences_used"] != float64(3) {
		t.Errorf("sentences_used = %v, want 3", output["sentences_used"])
	}
	if output["rendered"] != "- A.\n- B.\n- C.\n" {
		t.Errorf("rendered = %q", output["rendered"])
	}
	report := output["report"].(map[string]any)
	if report["compression_percent"] != "57.1%" {
		t.Errorf("compression_percent = %v, want 57.1%%", report["compression_percent"])
	}
}

func TestHandleSummarize_EmptyNotice(t *testing.T) {
	h := NewHandlers(config.DefaultConfig())

	result, err := h.HandleSummarize(context.Background(), makeRequest(map[string]any{"text": "   "}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)

	if output["empty"] != true {
		t.Errorf("empty = %v, want true", output["empty"])
	}
	notice, ok := output["notice"].(map[string]any)
	if !ok {
		t.Fatalf("notice missing from output: %v", output)
	}
	if notice["code"] != string(errors.ErrDegenerateSummary) {
		t.Errorf("notice code = %v, want %s", notice["code"], errors.ErrDegenerateSummary)
	}
}

func TestHandleReport(t *testing.T) {
	cfg := config.DefaultConfig()
	threshold := 0.1
	cfg.ScoreThreshold = &threshold
	h := NewHandlers(cfg)
	ctx := context.Background()

	// Threshold from config
	result, err := h.HandleReport(ctx, makeRequest(map[string]any{
		"scores": map[string]any{"joy": 0.42, "anger": 0.05},
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	scores := output["scores"].([]any)
	if len(scores) != 1 {
		t.Fatalf("scores length = %d, want 1", len(scores))
	}
	if entry := scores[0].(map[string]any); entry["name"] != "joy" || entry["formatted"] != "0.420" {
		t.Errorf("scores[0] = %v, want joy 0.420", entry)
	}

	// Explicit zero threshold overrides config
	result, err = h.HandleReport(ctx, makeRequest(map[string]any{
		"scores":    map[string]any{"joy": 0.42, "anger": 0.05},
		"threshold": 0,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output = parseOutput(t, result)
	if got := len(output["scores"].([]any)); got != 2 {
		t.Errorf("scores length = %d, want 2", got)
	}

	// Missing scores
	result, err = h.HandleReport(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, result, "INVALID_INPUT")
}

func TestHandlers_Concurrent(t *testing.T) {
	h := NewHandlers(config.DefaultConfig())
	args := map[string]any{
		"text":  "Apple and Google met Tim Cook at Apple Park.",
		"spans": []any{map[string]any{"text": "Apple", "category": "ORG"}},
	}

	first, err := h.HandleAnnotate(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	want := extractErrorMessage(first)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := h.HandleAnnotate(context.Background(), makeRequest(args))
			if err != nil {
				return
			}
			results[i] = extractErrorMessage(r)
		}()
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Errorf("result %d differs from sequential result", i)
		}
	}
}

func TestServerRegistration(t *testing.T) {
	s := NewServer(config.DefaultConfig(), "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{"text_annotate", "text_summarize", "text_report"}
	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"text_report", "text_report"}
	tools := NewServer(cfg, "test").ListTools()

	if len(tools) != 2 {
		t.Errorf("registered tool count = %d, want 2", len(tools))
	}
	if _, ok := tools["text_report"]; ok {
		t.Error("disabled tool 'text_report' should not be registered")
	}
}

func TestServerRegistration_DisabledType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DisabledTypes = []string{"text"}
	tools := NewServer(cfg, "test").ListTools()

	if len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (type disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{name: "all valid", input: []string{"text_report", "text_summarize"}, wantLen: 0},
		{name: "one unknown", input: []string{"text_report", "image_caption"}, wantLen: 1},
		{name: "all unknown", input: []string{"foo", "bar", "baz"}, wantLen: 3},
		{name: "empty list", input: []string{}, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	if unknown := ValidateDisabledTypes([]string{"text"}); len(unknown) != 0 {
		t.Errorf("ValidateDisabledTypes([text]) = %v, want none", unknown)
	}
	if unknown := ValidateDisabledTypes([]string{"text", "image"}); len(unknown) != 1 || unknown[0] != "image" {
		t.Errorf("ValidateDisabledTypes([text image]) = %v, want [image]", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	want := []string{"text_annotate", "text_report", "text_summarize"}

	if len(names) != len(want) {
		t.Fatalf("AllToolNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("AllToolNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestGetTypeForTool(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "text_annotate", want: "text"},
		{input: "text_report", want: "text"},
		{input: "notype", want: ""},
		{input: "_leading", want: ""},
	}

	for _, tt := range tests {
		if got := GetTypeForTool(tt.input); got != tt.want {
			t.Errorf("GetTypeForTool(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExpandTypesToTools(t *testing.T) {
	if got := ExpandTypesToTools(nil); got != nil {
		t.Errorf("ExpandTypesToTools(nil) = %v, want nil", got)
	}
	if got := ExpandTypesToTools([]string{"text"}); len(got) != 3 {
		t.Errorf("ExpandTypesToTools([text]) = %v, want 3 tools", got)
	}
	if got := ExpandTypesToTools([]string{"image"}); len(got) != 0 {
		t.Errorf("ExpandTypesToTools([image]) = %v, want none", got)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("render summary: goldmark failed at /tmp/secret")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrappedErr := fmt.Errorf("spans[2]: %w", errors.NewInvalidInput("category must not be empty"))

	errObj := errorObject(t, errorResult(wrappedErr))
	if errObj["code"] != string(errors.ErrInvalidInput) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrInvalidInput)
	}
	msg := errObj["message"].(string)
	if msg != "spans[2]: category must not be empty" {
		t.Errorf("message = %q, want wrapper context and plain message", msg)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewTextTooLarge(10, 20)))
	if errObj["code"] != string(errors.ErrTextTooLarge) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrTextTooLarge)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	if errObj["code"] != string(errors.ErrInternal) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if errObj["message"] != "an internal error occurred" {
		t.Errorf("message=%v, want generic message", errObj["message"])
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

// errorObject extracts the "error" object from an error result.
func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in payload: %v", payload)
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error result with code %q, got success", expectedCode)
		return
	}
	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	code, ok := errorObject(t, result)["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}
	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
