package ops

import (
	"strings"

	"github.com/hpungsan/annotext/internal/config"
	"github.com/hpungsan/annotext/internal/errors"
	"github.com/hpungsan/annotext/internal/render"
	"github.com/hpungsan/annotext/internal/summary"
)

// Request limits
const (
	MaxSpans    = 1000
	MaxScores   = 200
	MaxKeywords = 50
)

// Notice is a non-fatal condition reported alongside a successful result.
type Notice struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Details map[string]any   `json:"details,omitempty"`
}

// noticeFrom converts a coded error into a Notice.
func noticeFrom(e *errors.AnnotextError) Notice {
	return Notice{Code: e.Code, Message: e.Message, Details: e.Details}
}

// checkTextSize rejects text longer than cfg.MaxTextChars characters.
// A non-positive limit disables the check.
func checkTextSize(cfg *config.Config, text string) error {
	if cfg.MaxTextChars <= 0 {
		return nil
	}
	if n := summary.CountChars(text); n > cfg.MaxTextChars {
		return errors.NewTextTooLarge(cfg.MaxTextChars, n)
	}
	return nil
}

// parseFormat maps a format name to a render.Format, wrapping failures as
// INVALID_INPUT.
func parseFormat(s string) (render.Format, error) {
	f, err := render.ParseFormat(s)
	if err != nil {
		return "", errors.NewInvalidInput(err.Error())
	}
	return f, nil
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
