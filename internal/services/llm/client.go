package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"verbatim/internal/services"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout = 120 * time.Second
)

// Config holds the connection settings for an OpenRouter-compatible endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client sends chat completions and keeps a running token count.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      retryPolicy

	mu    sync.Mutex
	usage Usage
}

// Usage is the token count reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts sets how many times a request is tried in total.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.attempts = attempts
	}
}

// WithRetryBackoff sets the first retry delay and the cap.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.base = baseDelay
		c.retry.max = maxDelay
	}
}

// WithSleeper replaces the retry wait, for tests.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.sleeper = sleeper
	}
}

// NewClient builds a client from cfg. Blank settings fall back to OpenRouter
// defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			Referer:        strings.TrimSpace(cfg.Referer),
			Title:          strings.TrimSpace(cfg.Title),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		retry:      defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	return client
}

// Model reports the model used when a request names none.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Usage returns the tokens consumed by every successful completion so far.
func (c *Client) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

func (c *Client) addUsage(u Usage) {
	c.mu.Lock()
	c.usage.PromptTokens += u.PromptTokens
	c.usage.CompletionTokens += u.CompletionTokens
	c.mu.Unlock()
}

// Request is one chat completion.
type Request struct {
	System      string
	User        string
	Temperature float64
	// Model overrides the configured model when non-empty.
	Model string
	JSON  bool
	// AllowTruncated accepts a reply cut off by the provider's length limit.
	AllowTruncated bool
}

// Complete sends req and returns the trimmed reply. Errors carry a services
// marker: ErrConfiguration for missing or rejected credentials, ErrTimeout,
// ErrCanceled, or ErrExternalTool.
func (c *Client) Complete(ctx context.Context, req Request, op string) (string, error) {
	if op == "" {
		op = "llm complete"
	}
	system := strings.TrimSpace(req.System)
	user := strings.TrimSpace(req.User)
	switch {
	case system == "":
		return "", services.Wrap(services.ErrValidation, "llm", op, "system prompt required", nil)
	case user == "":
		return "", services.Wrap(services.ErrValidation, "llm", op, "user prompt required", nil)
	case c.cfg.APIKey == "":
		return "", services.Wrap(services.ErrConfiguration, "llm", op, "api key required", nil)
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.cfg.Model
	}
	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: req.Temperature,
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var reply completion
	err := c.retry.run(ctx, func() error {
		var err error
		reply, err = c.send(ctx, body, op)
		return err
	})
	if err != nil {
		return "", classify(op, err)
	}
	if reply.finishReason == "length" && !req.AllowTruncated {
		return "", services.Wrap(services.ErrExternalTool, "llm", op,
			"reply truncated at the provider's output limit; use shorter chunks", nil)
	}
	c.addUsage(reply.usage)
	return reply.content, nil
}

// HealthCheck sends a tiny JSON request to confirm the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.Complete(ctx, Request{
		System: "You must respond with JSON only.",
		User:   `Respond with {"ok":true}`,
		JSON:   true,
	}, "llm health")
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &parsed); err != nil {
		return services.Wrap(services.ErrExternalTool, "llm", "llm health", "parse payload: "+snippet(content), err)
	}
	if !parsed.OK {
		return services.Wrap(services.ErrExternalTool, "llm", "llm health", "unexpected response", nil)
	}
	return nil
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return services.Wrap(services.ErrCanceled, "llm", op, "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "llm", op, "", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, "llm", op, "", err)
	}
	var statusErr *statusError
	if errors.As(err, &statusErr) && (statusErr.code == http.StatusUnauthorized || statusErr.code == http.StatusForbidden) {
		return services.Wrap(services.ErrConfiguration, "llm", op, "credentials rejected", err)
	}
	return services.Wrap(services.ErrExternalTool, "llm", op, "", err)
}
