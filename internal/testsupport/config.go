package testsupport

import (
	"path/filepath"
	"testing"

	"verbatim/internal/config"
)

// ConfigOption mutates a generated test config.
type ConfigOption func(*config.Config)

// NewConfig returns the default config with a fake API key and data and log
// directories under a fresh t.TempDir.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.LLM.APIKey = "test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithLLMBaseURL points the reviser at a test server.
func WithLLMBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.LLM.BaseURL = url
	}
}

// WithReview adjusts the review section.
func WithReview(fn func(*config.Review)) ConfigOption {
	return func(cfg *config.Config) {
		fn(&cfg.Review)
	}
}

// BaseDir returns the temp directory holding cfg's data and log directories.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
