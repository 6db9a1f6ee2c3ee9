package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"verbatim/internal/services"
)

func respondContent(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	respondChoice(t, w, map[string]any{
		"finish_reason": "stop",
		"message":       map[string]any{"content": content},
	}, nil)
}

func respondChoice(t *testing.T, w http.ResponseWriter, choice map[string]any, usage map[string]int) {
	t.Helper()
	payload := map[string]any{"choices": []any{choice}}
	if usage != nil {
		payload["usage"] = usage
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func newTestClient(url string, opts ...Option) *Client {
	opts = append([]Option{WithSleeper(func(time.Duration) {})}, opts...)
	return NewClient(Config{APIKey: "test", BaseURL: url, Model: "demo-model"}, opts...)
}

func plainRequest(user string) Request {
	return Request{System: "sys", User: user}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"bare", `{"ok":true}`},
		{"fenced", "```json\n{\"ok\":true}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer test" {
					t.Errorf("unexpected auth header %q", got)
				}
				var req chatRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode request: %v", err)
				}
				if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
					t.Errorf("health check should request json, got %+v", req.ResponseFormat)
				}
				respondContent(t, w, tt.reply)
			}))
			defer server.Close()

			if err := newTestClient(server.URL).HealthCheck(context.Background()); err != nil {
				t.Fatalf("HealthCheck returned error: %v", err)
			}
		})
	}
}

func TestHealthCheckRejectsProse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondContent(t, w, "Sure, everything is fine.")
	}))
	defer server.Close()

	err := newTestClient(server.URL).HealthCheck(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "everything is fine") {
		t.Fatalf("expected reply snippet in error, got %v", err)
	}
}

func TestUnauthorizedIsConfigurationError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	err := newTestClient(server.URL).HealthCheck(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("401 must not be retried, got %d calls", calls.Load())
	}
}

func TestCompleteValidatesInput(t *testing.T) {
	tests := []struct {
		name   string
		client *Client
		req    Request
		marker error
	}{
		{"missing key", NewClient(Config{Model: "demo"}), plainRequest("user"), services.ErrConfiguration},
		{"blank system", newTestClient("http://127.0.0.1:1"), Request{User: "user"}, services.ErrValidation},
		{"blank user", newTestClient("http://127.0.0.1:1"), Request{System: "sys", User: "  "}, services.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.Complete(context.Background(), tt.req, "")
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
		})
	}
}

func TestCompleteSendsTemperatureAndModelOverride(t *testing.T) {
	var received chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		respondContent(t, w, "  revised text \n")
	}))
	defer server.Close()

	content, err := newTestClient(server.URL).Complete(context.Background(), Request{
		System:      "sys",
		User:        "user",
		Temperature: 0.7,
		Model:       "override-model",
	}, "")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != "revised text" {
		t.Fatalf("unexpected content %q", content)
	}
	if received.Model != "override-model" {
		t.Fatalf("expected model override, got %q", received.Model)
	}
	if received.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", received.Temperature)
	}
	if received.ResponseFormat != nil {
		t.Fatalf("plain text request must not set response_format, got %v", received.ResponseFormat)
	}
}

func TestCompleteAcceptsDeltaAndLegacyText(t *testing.T) {
	tests := []struct {
		name   string
		choice map[string]any
	}{
		{"delta", map[string]any{"delta": map[string]any{"content": "hello"}}},
		{"legacy text", map[string]any{"text": " hello "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondChoice(t, w, tt.choice, nil)
			}))
			defer server.Close()

			content, err := newTestClient(server.URL).Complete(context.Background(), plainRequest("user"), "")
			if err != nil {
				t.Fatalf("Complete returned error: %v", err)
			}
			if content != "hello" {
				t.Fatalf("unexpected content %q", content)
			}
		})
	}
}

func TestCompleteRejectsTruncatedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondChoice(t, w, map[string]any{
			"finish_reason": "length",
			"message":       map[string]any{"content": "the first half of"},
		}, nil)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), plainRequest("user"), "revise chunk 1/1")
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "truncated") {
		t.Fatalf("expected truncation error, got %v", err)
	}

	req := plainRequest("user")
	req.AllowTruncated = true
	content, err := client.Complete(context.Background(), req, "")
	if err != nil || content != "the first half of" {
		t.Fatalf("expected truncated content to pass through, got %q %v", content, err)
	}
}

func TestCompleteEmptyContentHasSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondContent(t, w, "")
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, WithRetryMaxAttempts(1)).Complete(context.Background(), plainRequest("user"), "")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "response_snippet") {
		t.Fatalf("expected snippet in error, got %v", err)
	}
}

func TestUsageAccumulates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondChoice(t, w, map[string]any{
			"finish_reason": "stop",
			"message":       map[string]any{"content": "ok"},
		}, map[string]int{"prompt_tokens": 100, "completion_tokens": 20})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	for i := 0; i < 3; i++ {
		if _, err := client.Complete(context.Background(), plainRequest("user"), ""); err != nil {
			t.Fatalf("Complete returned error: %v", err)
		}
	}
	usage := client.Usage()
	if usage.PromptTokens != 300 || usage.CompletionTokens != 60 || usage.Total() != 360 {
		t.Fatalf("unexpected usage %+v", usage)
	}
}

func TestRetriesHonorRetryAfter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		respondContent(t, w, "the dog sat")
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
	)
	content, err := client.Complete(context.Background(), plainRequest("the cat sat"), "")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != "the dog sat" || calls.Load() != 2 {
		t.Fatalf("unexpected content %q after %d calls", content, calls.Load())
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestRetriesEmptyContentThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := ""
		if calls.Add(1) >= 3 {
			content = "done"
		}
		respondContent(t, w, content)
	}))
	defer server.Close()

	content, err := newTestClient(server.URL).Complete(context.Background(), plainRequest("user"), "")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if content != "done" || calls.Load() != 3 {
		t.Fatalf("unexpected content %q after %d calls", content, calls.Load())
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, WithRetryMaxAttempts(3)).Complete(context.Background(), plainRequest("user"), "")
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("expected attempt count in error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Complete(context.Background(), plainRequest("user"), ""); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestCompleteCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondContent(t, w, "never")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(server.URL).Complete(ctx, plainRequest("user"), "")
	if !errors.Is(err, services.ErrCanceled) {
		t.Fatalf("expected canceled marker, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	policy := retryPolicy{base: time.Second, max: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := policy.backoff(i + 1); got != expected {
			t.Fatalf("attempt %d: got %v want %v", i+1, got, expected)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected %v %v", d, ok)
	}
	for _, value := range []string{"-1", "", "soon"} {
		if _, ok := parseRetryAfter(value); ok {
			t.Fatalf("retry-after %q should be ignored", value)
		}
	}
}

func TestSnippetFlattensAndTruncates(t *testing.T) {
	if got := snippet("  a\n\tb  "); got != "a b" {
		t.Fatalf("unexpected snippet %q", got)
	}
	if got := snippet(""); got != "<empty>" {
		t.Fatalf("unexpected empty snippet %q", got)
	}
	if got := snippet(strings.Repeat("x", 200)); len(got) != 163 {
		t.Fatalf("expected truncated snippet, got %d chars", len(got))
	}
}
