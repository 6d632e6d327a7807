package ops

import (
	"fmt"
	"math"

	"github.com/hpungsan/annotext/internal/errors"
	"github.com/hpungsan/annotext/internal/report"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Scores    map[string]float64 // required, 1-200 entries
	Threshold float64            // scores at or below are hidden
}

// ReportOutput contains the result of the Report operation.
type ReportOutput struct {
	Scores    []report.ScoreEntry `json:"scores"`
	Hidden    int                 `json:"hidden"`
	Threshold float64             `json:"threshold"`
}

// Report filters and formats named scores for display.
func Report(input ReportInput) (*ReportOutput, error) {
	if len(input.Scores) == 0 {
		return nil, errors.NewInvalidInput("scores is required and must not be empty")
	}
	if len(input.Scores) > MaxScores {
		return nil, errors.NewInvalidInput(fmt.Sprintf("too many scores: %d (max %d)", len(input.Scores), MaxScores))
	}
	if math.IsNaN(input.Threshold) || math.IsInf(input.Threshold, 0) {
		return nil, errors.NewInvalidInput("threshold must be a finite number")
	}
	for name, v := range input.Scores {
		if name == "" {
			return nil, errors.NewInvalidInput("score names must not be empty")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewInvalidInput(fmt.Sprintf("score %q must be a finite number", name))
		}
	}

	entries := report.FilterScores(input.Scores, input.Threshold)
	return &ReportOutput{
		Scores:    entries,
		Hidden:    len(input.Scores) - len(entries),
		Threshold: input.Threshold,
	}, nil
}
