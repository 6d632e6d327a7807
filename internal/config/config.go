package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
// Zero scalars in a config file or environment mean "inherit" when layers
// are merged; ScoreThreshold is a pointer so an explicit 0 still overrides.
type Config struct {
	// MaxTextChars is the maximum character count (runes) accepted per call
	MaxTextChars int `json:"max_text_chars"`

	// SummaryMode is the default selection mode: "leading", "ratio" or "scored".
	SummaryMode string `json:"summary_mode,omitempty"`

	// SummaryRatio is the default target ratio in (0, 1].
	SummaryRatio float64 `json:"summary_ratio,omitempty"`

	// SummaryMaxSentences caps leading-mode summaries (3 unless overridden).
	SummaryMaxSentences int `json:"summary_max_sentences,omitempty"`

	// ResolvePriority is the default span priority: "last-occurrence" or
	// "longest-first". Changing it changes which overlapping spans win.
	ResolvePriority string `json:"resolve_priority,omitempty"`

	// ScoreThreshold hides report scores at or below this value.
	// Nil means unset; see Threshold.
	ScoreThreshold *float64 `json:"score_threshold,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "text". Unknown type names are logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// Environment variables read by ApplyEnv.
const (
	EnvMaxTextChars        = "ANNOTEXT_MAX_TEXT_CHARS"
	EnvSummaryMode         = "ANNOTEXT_SUMMARY_MODE"
	EnvSummaryRatio        = "ANNOTEXT_SUMMARY_RATIO"
	EnvSummaryMaxSentences = "ANNOTEXT_SUMMARY_MAX_SENTENCES"
	EnvResolvePriority     = "ANNOTEXT_RESOLVE_PRIORITY"
	EnvScoreThreshold      = "ANNOTEXT_SCORE_THRESHOLD"
	EnvDisabledTools       = "ANNOTEXT_DISABLED_TOOLS"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxTextChars:        100000,
		SummaryMode:         "leading",
		SummaryRatio:        0.3,
		SummaryMaxSentences: 3,
		ResolvePriority:     "last-occurrence",
	}
}

// Threshold returns the configured score threshold, 0 when unset.
func (c *Config) Threshold() float64 {
	if c.ScoreThreshold == nil {
		return 0
	}
	return *c.ScoreThreshold
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.annotext.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.annotext) and repo (.annotext) directories.
// Repo config is found by walking upward from startDir to find the nearest .annotext/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .annotext/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".annotext", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		MaxTextChars:        pick(overlay.MaxTextChars, base.MaxTextChars),
		SummaryMode:         pick(strings.TrimSpace(overlay.SummaryMode), base.SummaryMode),
		SummaryRatio:        pick(overlay.SummaryRatio, base.SummaryRatio),
		SummaryMaxSentences: pick(overlay.SummaryMaxSentences, base.SummaryMaxSentences),
		ResolvePriority:     pick(strings.TrimSpace(overlay.ResolvePriority), base.ResolvePriority),
		ScoreThreshold:      pickPtr(overlay.ScoreThreshold, base.ScoreThreshold),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// pick returns overlay unless it is the zero value.
func pick[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

// pickPtr returns a copy of overlay's value if set, else of base's.
func pickPtr[T any](overlay, base *T) *T {
	src := overlay
	if src == nil {
		src = base
	}
	if src == nil {
		return nil
	}
	v := *src
	return &v
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// ApplyEnv overlays ANNOTEXT_* settings onto cfg. Values come from the
// process environment first, then from the dotenv file at envPath (which
// may be missing or empty).
func ApplyEnv(cfg *Config, envPath string) (*Config, error) {
	dotenv := map[string]string{}
	if envPath != "" {
		vars, err := godotenv.Read(envPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envPath, err)
		}
		if vars != nil {
			dotenv = vars
		}
	}

	return applyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
}

// applyEnv overlays values found through lookup onto a copy of cfg.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) (*Config, error) {
	overlay := &Config{}
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	if v := get(EnvMaxTextChars); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: invalid integer %q", EnvMaxTextChars, v)
		}
		overlay.MaxTextChars = n
	}
	overlay.SummaryMode = get(EnvSummaryMode)
	if v := get(EnvSummaryRatio); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q", EnvSummaryRatio, v)
		}
		overlay.SummaryRatio = f
	}
	if v := get(EnvSummaryMaxSentences); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: invalid integer %q", EnvSummaryMaxSentences, v)
		}
		overlay.SummaryMaxSentences = n
	}
	overlay.ResolvePriority = get(EnvResolvePriority)
	if v := get(EnvScoreThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q", EnvScoreThreshold, v)
		}
		overlay.ScoreThreshold = &f
	}
	if v := get(EnvDisabledTools); v != "" {
		overlay.DisabledTools = strings.Split(v, ",")
	}

	return Merge(cfg, overlay), nil
}
