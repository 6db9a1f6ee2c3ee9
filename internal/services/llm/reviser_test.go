package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"verbatim/internal/review"
)

func TestReviserSendsChunkPrompt(t *testing.T) {
	var received chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		respondContent(t, w, "```text\nthe dog sat\n```")
	}))
	defer server.Close()

	reviser := NewReviser(NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"}))
	out, err := reviser.ReviseChunk(context.Background(), review.ChunkRequest{
		PreviousTail: "earlier words",
		Text:         "the cat sat",
		Index:        1,
		Total:        3,
		Temperature:  0.4,
		Instructions: "Use British spelling",
	})
	if err != nil {
		t.Fatalf("ReviseChunk returned error: %v", err)
	}
	if out != "the dog sat" {
		t.Fatalf("expected fence stripped output, got %q", out)
	}
	if len(received.Messages) != 2 || received.Messages[0].Content != RevisionSystemPrompt {
		t.Fatalf("unexpected messages %+v", received.Messages)
	}
	user := received.Messages[1].Content
	for _, want := range []string{"Chunk 2 of 3", "earlier words", "the cat sat", "Use British spelling"} {
		if !strings.Contains(user, want) {
			t.Fatalf("expected %q in prompt %q", want, user)
		}
	}
	if received.Temperature != 0.4 {
		t.Fatalf("expected temperature 0.4, got %v", received.Temperature)
	}
}

func TestReviserSkipsBlankChunk(t *testing.T) {
	reviser := NewReviser(NewClient(Config{APIKey: "test", BaseURL: "http://127.0.0.1:1"}))
	out, err := reviser.ReviseChunk(context.Background(), review.ChunkRequest{Text: "   "})
	if err != nil || out != "" {
		t.Fatalf("expected empty result without request, got %q %v", out, err)
	}
}

func TestBuildRevisionPromptOmitsEmptySections(t *testing.T) {
	prompt := BuildRevisionPrompt(review.ChunkRequest{Text: "hello", Index: 0, Total: 1})
	if strings.Contains(prompt, "Previous context") || strings.Contains(prompt, "Additional instructions") {
		t.Fatalf("unexpected sections in %q", prompt)
	}
	if !strings.HasPrefix(prompt, "Chunk 1 of 1.") {
		t.Fatalf("unexpected header in %q", prompt)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"plain":                  "plain",
		"```\nbody\n```":         "body",
		"```markdown\nA\nB\n```": "A\nB",
		"```":                    "",
	}
	for in, want := range tests {
		if got := StripCodeFence(in); got != want {
			t.Fatalf("StripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}
