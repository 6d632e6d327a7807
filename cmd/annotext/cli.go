package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/annotext/internal/config"
	"github.com/hpungsan/annotext/internal/errors"
	"github.com/hpungsan/annotext/internal/ops"
	"github.com/hpungsan/annotext/internal/render"
	"github.com/hpungsan/annotext/internal/span"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "annotext",
		Usage:   "Span annotation, extractive summaries and display metrics",
		Version: Version,
		Commands: []*cli.Command{
			annotateCmd(cfg),
			summarizeCmd(cfg),
			reportCmd(cfg),
		},
		// Span descriptions may contain commas
		DisableSliceFlagSeparator: true,
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// annotateCmd creates the annotate command.
func annotateCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "annotate",
		Usage: "Annotate spans in text (reads text from stdin)",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "span", Aliases: []string{"s"}, Usage: `Span as "literal|CATEGORY|description" (repeatable)`},
			&cli.StringFlag{Name: "spans-file", Usage: "JSON file with an array of spans"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Overlap priority: last-occurrence|longest-first"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output: json|html|markdown|inline"},
		},
		Action: func(c *cli.Context) error {
			text, err := requireStdin(cfg)
			if err != nil {
				return outputError(err)
			}

			spans, err := collectSpans(c.StringSlice("span"), c.String("spans-file"))
			if err != nil {
				return outputError(err)
			}

			result, err := ops.Annotate(cfg, ops.AnnotateInput{
				Text:     text,
				Spans:    spans,
				Priority: c.String("priority"),
				Format:   c.String("format"),
			})
			if err != nil {
				return outputError(err)
			}

			if result.Format == render.FormatJSON {
				return outputJSON(result)
			}
			for _, n := range result.Notices {
				slog.Warn(n.Message, "code", n.Code)
			}
			return outputText(result.Rendered)
		},
	}
}

// summarizeCmd creates the summarize command.
func summarizeCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "summarize",
		Usage: "Extractive summary of text (reads text from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "Selection mode: leading|ratio|scored"},
			&cli.Float64Flag{Name: "ratio", Aliases: []string{"r"}, Usage: "Target compression in (0, 1]"},
			&cli.IntFlag{Name: "max-sentences", Aliases: []string{"n"}, Usage: "Maximum sentences to select"},
			&cli.IntFlag{Name: "keywords", Aliases: []string{"k"}, Usage: "Number of top keywords to include"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output: json|html|markdown|inline"},
		},
		Action: func(c *cli.Context) error {
			text, err := requireStdin(cfg)
			if err != nil {
				return outputError(err)
			}

			result, err := ops.Summarize(cfg, ops.SummarizeInput{
				Text:         text,
				Ratio:        c.Float64("ratio"),
				MaxSentences: c.Int("max-sentences"),
				Mode:         c.String("mode"),
				Format:       c.String("format"),
				Keywords:     c.Int("keywords"),
			})
			if err != nil {
				return outputError(err)
			}

			if result.Format == render.FormatJSON {
				return outputJSON(result)
			}
			if result.Notice != nil {
				slog.Warn(result.Notice.Message, "code", result.Notice.Code)
			}
			return outputText(result.Rendered)
		},
	}
}

// reportCmd creates the report command.
func reportCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Filter and format named scores (flags or a JSON object on stdin)",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "score", Usage: `Score as "name=value" (repeatable)`},
			&cli.Float64Flag{Name: "threshold", Aliases: []string{"t"}, Usage: "Hide scores at or below this value"},
		},
		Action: func(c *cli.Context) error {
			scores, err := parseScores(c.StringSlice("score"))
			if err != nil {
				return outputError(err)
			}
			if len(scores) == 0 && stdinHasData() {
				data, err := readStdin(maxStdinBytes(cfg))
				if err != nil {
					return outputError(err)
				}
				if strings.TrimSpace(data) != "" {
					if err := json.Unmarshal([]byte(data), &scores); err != nil {
						return outputError(errors.NewInvalidInput(fmt.Sprintf("stdin must be a JSON object of scores: %v", err)))
					}
				}
			}

			threshold := cfg.Threshold()
			if c.IsSet("threshold") {
				threshold = c.Float64("threshold")
			}

			result, err := ops.Report(ops.ReportInput{Scores: scores, Threshold: threshold})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(result)
		},
	}
}

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputText writes rendered output to stdout with a trailing newline.
func outputText(s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(os.Stdout, s)
	return err
}

// outputError formats error for CLI.
func outputError(err error) error {
	var aErr *errors.AnnotextError
	if stderrors.As(err, &aErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", aErr.Code, aErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// requireStdin reads the input text, which must be piped.
func requireStdin(cfg *config.Config) (string, error) {
	if !stdinHasData() {
		return "", errors.NewInvalidInput("text must be piped via stdin")
	}
	return readStdin(maxStdinBytes(cfg))
}

// maxStdinBytes bounds stdin reads: at most 4 bytes per allowed character.
// Zero means unlimited.
func maxStdinBytes(cfg *config.Config) int64 {
	if cfg.MaxTextChars <= 0 {
		return 0
	}
	return int64(cfg.MaxTextChars) * 4
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin, up to limit bytes when limit > 0.
// Only trailing line breaks are removed so byte offsets stay valid.
func readStdin(limit int64) (string, error) {
	var r io.Reader = os.Stdin
	if limit > 0 {
		r = io.LimitReader(os.Stdin, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", errors.NewInvalidInput(fmt.Sprintf("stdin exceeds %d bytes", limit))
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// parseSpan parses "literal|CATEGORY|description". The description is optional
// and may itself contain '|'.
func parseSpan(s string) (span.Span, error) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) < 2 {
		return span.Span{}, errors.NewInvalidInput(fmt.Sprintf("span %q must look like literal|CATEGORY|description", s))
	}
	literal, category := parts[0], strings.TrimSpace(parts[1])
	if strings.TrimSpace(literal) == "" || category == "" {
		return span.Span{}, errors.NewInvalidInput(fmt.Sprintf("span %q needs a literal and a category", s))
	}
	description := ""
	if len(parts) == 3 {
		description = strings.TrimSpace(parts[2])
	}
	return span.Literal(literal, category, description), nil
}

// collectSpans merges spans from a JSON file (first) and --span flags.
func collectSpans(flags []string, file string) ([]span.Span, error) {
	var spans []span.Span
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.NewInvalidInput(fmt.Sprintf("cannot read spans file: %v", err))
		}
		if err := json.Unmarshal(data, &spans); err != nil {
			return nil, errors.NewInvalidInput(fmt.Sprintf("spans file must be a JSON array of spans: %v", err))
		}
	}
	for _, f := range flags {
		sp, err := parseSpan(f)
		if err != nil {
			return nil, err
		}
		spans = append(spans, sp)
	}
	return spans, nil
}

// parseScores parses "name=value" pairs. Later duplicates win.
func parseScores(pairs []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.NewInvalidInput(fmt.Sprintf("score %q must look like name=value", p))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, errors.NewInvalidInput(fmt.Sprintf("score %q has a non-numeric value", p))
		}
		scores[name] = v
	}
	return scores, nil
}
