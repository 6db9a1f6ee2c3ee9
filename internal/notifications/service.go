package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"verbatim/internal/config"
)

const userAgent = "verbatim/0.1"

// Service is the notification surface used by the CLI.
type Service interface {
	NotifyReviewReady(ctx context.Context, transcript string, changes int) error
	NotifyReviewSaved(ctx context.Context, transcript string, version, accepted, rejected int) error
	NotifyError(ctx context.Context, err error, transcript string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed Service, or a no-op when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc delivers anything.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyReviewReady(ctx context.Context, transcript string, changes int) error {
	return n.send(ctx, payload{
		title:   "verbatim - Review Ready",
		message: fmt.Sprintf("%s: %d changes await a decision", strings.TrimSpace(transcript), changes),
		tags:    []string{"verbatim", "review", "ready"},
	})
}

func (n *ntfyService) NotifyReviewSaved(ctx context.Context, transcript string, version, accepted, rejected int) error {
	return n.send(ctx, payload{
		title: "verbatim - Revision Saved",
		message: fmt.Sprintf("%s: version %d saved (%d accepted, %d rejected)",
			strings.TrimSpace(transcript), version, accepted, rejected),
		tags:     []string{"verbatim", "review", "saved"},
		priority: "low",
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, transcript string) error {
	var b strings.Builder
	b.WriteString("Review failed")
	if transcript = strings.TrimSpace(transcript); transcript != "" {
		b.WriteString(" for ")
		b.WriteString(transcript)
	}
	if err != nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return n.send(ctx, payload{
		title:    "verbatim - Error",
		message:  b.String(),
		tags:     []string{"verbatim", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "verbatim - Test",
		message:  "Notification test from verbatim",
		tags:     []string{"verbatim", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyReviewReady(context.Context, string, int) error           { return nil }
func (noopService) NotifyReviewSaved(context.Context, string, int, int, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error               { return nil }
func (noopService) TestNotification(context.Context) error                         { return nil }
