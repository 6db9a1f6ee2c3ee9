package preflight

import (
	"context"
	"errors"
	"time"

	"verbatim/internal/config"
	"verbatim/internal/services"
	"verbatim/internal/services/llm"
)

const llmCheckTimeout = 30 * time.Second

// CheckLLM sends one health request to the configured reviser endpoint. It
// does not retry, so a flaky endpoint shows up here.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	ctx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	err := client.HealthCheck(ctx)
	switch {
	case err == nil:
		return Result{Name: name, Passed: true, Detail: "API reachable (" + client.Model() + ")"}
	case errors.Is(err, services.ErrTimeout):
		return Result{Name: name, Detail: "no response within " + llmCheckTimeout.String()}
	case errors.Is(err, services.ErrConfiguration):
		return Result{Name: name, Detail: "credentials rejected (check llm.api_key)"}
	default:
		return Result{Name: name, Detail: err.Error()}
	}
}
