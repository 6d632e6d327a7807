package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an annotext error code.
type ErrorCode string

const (
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"      // 400
	ErrUnmatchedSpan     ErrorCode = "UNMATCHED_SPAN"     // 404 (non-fatal, reported per span)
	ErrTextTooLarge      ErrorCode = "TEXT_TOO_LARGE"     // 413
	ErrDegenerateSummary ErrorCode = "DEGENERATE_SUMMARY" // 422 (notice on empty summaries, never returned)
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// AnnotextError represents a structured error with code, status, and details.
type AnnotextError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *AnnotextError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInput creates a 400 error for unusable caller input.
func NewInvalidInput(msg string) *AnnotextError {
	return &AnnotextError{
		Code:    ErrInvalidInput,
		Status:  400,
		Message: msg,
	}
}

// NewEmptyText creates the INVALID_INPUT error returned for empty or
// whitespace-only text.
func NewEmptyText() *AnnotextError {
	return NewInvalidInput("text must not be empty; supply non-empty text")
}

// NewUnmatchedSpan describes a span whose literal was not applied.
func NewUnmatchedSpan(literal, reason string) *AnnotextError {
	return &AnnotextError{
		Code:    ErrUnmatchedSpan,
		Status:  404,
		Message: fmt.Sprintf("span %q not matched: %s", literal, reason),
		Details: map[string]any{"text": literal, "reason": reason},
	}
}

// NewTextTooLarge creates a 413 error when input exceeds the size limit.
func NewTextTooLarge(max, actual int) *AnnotextError {
	return &AnnotextError{
		Code:    ErrTextTooLarge,
		Status:  413,
		Message: fmt.Sprintf("text exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewDegenerateSummary describes a summary request that found no sentences.
func NewDegenerateSummary() *AnnotextError {
	return &AnnotextError{
		Code:    ErrDegenerateSummary,
		Status:  422,
		Message: "no sentences found in text",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *AnnotextError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &AnnotextError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if err (or any error it wraps) is an AnnotextError with the given code.
func Is(err error, code ErrorCode) bool {
	var aErr *AnnotextError
	if stderrors.As(err, &aErr) {
		return aErr.Code == code
	}
	return false
}
