package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"verbatim/internal/config"
	"verbatim/internal/services"
)

func TestLoadDefaultConfigUsesEnvAPIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("VERBATIM_LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	os.Unsetenv("VERBATIM_LLM_API_KEY")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdirTemp(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "verbatim")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.StorePath() != filepath.Join(wantData, "verbatim.db") {
		t.Fatalf("unexpected store path %q", cfg.StorePath())
	}
	if cfg.LockPath() != filepath.Join(wantData, "verbatim.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Review.MaxChunkSeconds != 1200 {
		t.Fatalf("unexpected max chunk seconds %v", cfg.Review.MaxChunkSeconds)
	}
	if cfg.Review.PreviousTailWords != 40 {
		t.Fatalf("unexpected previous tail words %d", cfg.Review.PreviousTailWords)
	}
	if cfg.Review.MinTailFraction != 0.1 {
		t.Fatalf("unexpected min tail fraction %v", cfg.Review.MinTailFraction)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "verbatim.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		LLM struct {
			APIKey string `toml:"api_key"`
			Model  string `toml:"model"`
		} `toml:"llm"`
		Review struct {
			MaxChunkSeconds float64           `toml:"max_chunk_seconds"`
			PromptOptions   map[string]string `toml:"prompt_options"`
		} `toml:"review"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.LLM.APIKey = "file-key"
	custom.LLM.Model = "custom/model"
	custom.Review.MaxChunkSeconds = 600
	custom.Review.PromptOptions = map[string]string{" Legal ": " Keep legal terms verbatim. "}
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("OPENROUTER_API_KEY", "env-key")
	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("file key should win over env fallback, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "custom/model" {
		t.Fatalf("unexpected model %q", cfg.LLM.Model)
	}
	if cfg.Review.MaxChunkSeconds != 600 {
		t.Fatalf("unexpected max chunk seconds %v", cfg.Review.MaxChunkSeconds)
	}
	if cfg.Review.Temperature != 1.0 {
		t.Fatalf("expected default temperature to survive partial file, got %v", cfg.Review.Temperature)
	}
	if got := cfg.Review.PromptOptions["legal"]; got != "Keep legal terms verbatim." {
		t.Fatalf("expected normalized prompt option, got %q", got)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(configPath, []byte("[review\nmax_chunk_seconds = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "OPENROUTER_API_KEY") {
		t.Fatalf("sample config missing api key hint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	defaults := config.Default()
	if cfg.Review.MaxChunkSeconds != defaults.Review.MaxChunkSeconds {
		t.Fatalf("sample max_chunk_seconds %v differs from default %v", cfg.Review.MaxChunkSeconds, defaults.Review.MaxChunkSeconds)
	}
	if len(cfg.Review.PromptOptions) != len(defaults.Review.PromptOptions) {
		t.Fatalf("sample prompt options %v differ from defaults", cfg.Review.PromptOptions)
	}
	if !strings.Contains(cfg.Paths.DataDir, "verbatim") {
		t.Fatalf("expected data dir to contain verbatim, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"non-positive chunk", func(c *config.Config) { c.Review.MaxChunkSeconds = 0 }},
		{"tail fraction", func(c *config.Config) { c.Review.MinTailFraction = 1 }},
		{"temperature", func(c *config.Config) { c.Review.Temperature = 3 }},
		{"similarity", func(c *config.Config) { c.Review.SimilarityWarnThreshold = -0.1 }},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestRequireLLM(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireLLM(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without api key, got %v", err)
	}
	cfg.LLM.APIKey = "k"
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReviewInstructions(t *testing.T) {
	cfg := config.Default()
	cfg.Review.Instructions = "default notes"

	got, err := cfg.ReviewInstructions([]string{"Fillers", "numbers"}, "")
	if err != nil {
		t.Fatalf("ReviewInstructions returned error: %v", err)
	}
	want := cfg.Review.PromptOptions["fillers"] + "\n" + cfg.Review.PromptOptions["numbers"] + "\ndefault notes"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	got, err = cfg.ReviewInstructions(nil, "custom")
	if err != nil || got != "custom" {
		t.Fatalf("expected free-form override, got %q %v", got, err)
	}

	if _, err := cfg.ReviewInstructions([]string{"nope"}, ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown option, got %v", err)
	}
}

func TestPromptOptionNamesSorted(t *testing.T) {
	cfg := config.Default()
	names := cfg.PromptOptionNames()
	if strings.Join(names, ",") != "fillers,numbers,speakers" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestNotificationsTopicMustBeURL(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = "my-topic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bare topic name")
	}
	cfg.Notifications.NtfyTopic = "https://ntfy.sh/my-topic"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid topic rejected: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "typo.toml")
	content := "[review]\nmax_chunk_secs = 600\n\n[llm]\nmodle = \"x\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	for _, key := range []string{"review.max_chunk_secs", "llm.modle"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %q in %v", key, err)
		}
	}
}

func TestSampleConfigLoadsCleanly(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(configPath); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(configPath); err != nil || !exists {
		t.Fatalf("sample config should load, exists=%v err=%v", exists, err)
	}
}

// chdirTemp changes into a fresh temp dir and restores the previous working
// directory on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdirTemp(t *testing.T) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
