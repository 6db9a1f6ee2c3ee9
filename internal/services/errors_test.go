package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"verbatim/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "review", "revise chunk", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"review", "revise chunk", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", services.Wrap(services.ErrValidation, "chunk", "plan", "bad", nil), services.ExitUsage},
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), services.ExitUsage},
		{"not found", services.Wrap(services.ErrNotFound, "store", "get", "missing", nil), services.ExitNotFound},
		{"canceled marker", services.Wrap(services.ErrCanceled, "review", "run", "", nil), services.ExitCanceled},
		{"context canceled", fmt.Errorf("review: %w", context.Canceled), services.ExitCanceled},
		{"transient", services.Wrap(services.ErrTransient, "llm", "post", "", errors.New("io")), services.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHintEmptyForUnclassified(t *testing.T) {
	if hint := services.Hint(errors.New("plain")); hint != "" {
		t.Fatalf("expected empty hint, got %q", hint)
	}
	if hint := services.Hint(services.Wrap(services.ErrNotFound, "", "", "", nil)); hint == "" {
		t.Fatal("expected hint for not found")
	}
}
