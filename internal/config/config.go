package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"verbatim/internal/services"
)

// Paths contains data and log directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// LLM contains the reviser's chat completion connection settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Review contains chunking and reviser request settings.
type Review struct {
	MaxChunkSeconds float64 `toml:"max_chunk_seconds"`
	// MaxChunkWords closes a chunk early once it holds this many words. 0 disables the limit.
	MaxChunkWords   int     `toml:"max_chunk_words"`
	MinTailFraction float64 `toml:"min_tail_fraction"`
	Temperature     float64 `toml:"temperature"`
	// PreviousTailWords is how many words of the prior chunk accompany each request.
	PreviousTailWords       int               `toml:"previous_tail_words"`
	SimilarityWarnThreshold float64           `toml:"similarity_warn_threshold"`
	Instructions            string            `toml:"instructions"`
	PromptOptions           map[string]string `toml:"prompt_options"`
}

// Watch contains transcript file watcher settings.
type Watch struct {
	DebounceMS          int `toml:"debounce_ms"`
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// Notifications contains ntfy delivery settings. An empty topic disables them.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for verbatim.
//
// Configuration sections by subsystem:
//   - Paths: transcript store and log directories
//   - LLM: chat completion endpoint used by the reviser
//   - Review: chunk planning limits and reviser request defaults
//   - Watch: file watcher debounce and polling fallback
//   - Notifications: ntfy alerts for long-running reviews
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	Review        Review        `toml:"review"`
	Watch         Watch         `toml:"watch"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StorePath returns the transcript database location.
func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.DataDir, "verbatim.db")
}

// LockPath returns the single-writer lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "verbatim.lock")
}

// LogPath returns the log file location, or "" when file logging is off.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "verbatim.log")
}

// PromptOptionNames lists configured prompt presets in sorted order.
func (c *Config) PromptOptionNames() []string {
	names := make([]string, 0, len(c.Review.PromptOptions))
	for name := range c.Review.PromptOptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReviewInstructions joins the selected prompt presets with free-form
// instructions, one per line. Free-form text overrides the configured default
// when non-empty.
func (c *Config) ReviewInstructions(selected []string, instructions string) (string, error) {
	lines := make([]string, 0, len(selected)+1)
	for _, name := range selected {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		text, ok := c.Review.PromptOptions[key]
		if !ok {
			return "", services.Wrap(services.ErrValidation, "config", "prompt option", fmt.Sprintf("unknown option %q (have %s)", name, strings.Join(c.PromptOptionNames(), ", ")), nil)
		}
		lines = append(lines, text)
	}
	free := strings.TrimSpace(instructions)
	if free == "" {
		free = c.Review.Instructions
	}
	if free != "" {
		lines = append(lines, free)
	}
	return strings.Join(lines, "\n"), nil
}

// LLMConfig contains the connection settings handed to the chat client.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the reviser connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
