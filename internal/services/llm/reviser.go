package llm

import (
	"context"
	"fmt"
	"strings"

	"verbatim/internal/review"
	"verbatim/internal/services"
)

// RevisionSystemPrompt instructs the model to return a corrected transcript chunk.
const RevisionSystemPrompt = `You are a transcript editor. You receive one chunk of a verbatim
speech transcript and return the same chunk with transcription errors corrected.

Rules:
- Return only the revised chunk text. No commentary, no code fences.
- Keep the speaker's wording; fix misheard words, spelling, and punctuation.
- Keep every timestamp of the form H:MM:SS.d where it appears.
- Never summarize, reorder, or drop content.
- The previous context is for reference only; do not repeat it.`

// Reviser sends transcript chunks to the chat completion API.
type Reviser struct {
	client *Client
}

// NewReviser wraps client as a chunk reviser.
func NewReviser(client *Client) *Reviser {
	return &Reviser{client: client}
}

// ReviseChunk implements review.Reviser.
func (r *Reviser) ReviseChunk(ctx context.Context, req review.ChunkRequest) (string, error) {
	if r == nil || r.client == nil {
		return "", services.Wrap(services.ErrConfiguration, "llm", "revise chunk", "client not configured", nil)
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}
	content, err := r.client.Complete(ctx, Request{
		System:      RevisionSystemPrompt,
		User:        BuildRevisionPrompt(req),
		Temperature: req.Temperature,
		Model:       req.Model,
	}, fmt.Sprintf("revise chunk %d/%d", req.Index+1, req.Total))
	if err != nil {
		return "", err
	}
	return StripCodeFence(content), nil
}

// BuildRevisionPrompt renders the user message for a chunk request.
func BuildRevisionPrompt(req review.ChunkRequest) string {
	var b strings.Builder
	total := req.Total
	if total <= 0 {
		total = 1
	}
	fmt.Fprintf(&b, "Chunk %d of %d.\n", req.Index+1, total)
	if instructions := strings.TrimSpace(req.Instructions); instructions != "" {
		b.WriteString("\nAdditional instructions:\n")
		b.WriteString(instructions)
		b.WriteString("\n")
	}
	if tail := strings.TrimSpace(req.PreviousTail); tail != "" {
		b.WriteString("\nPrevious context (do not revise):\n<<<\n")
		b.WriteString(tail)
		b.WriteString("\n>>>\n")
	}
	b.WriteString("\nChunk to revise:\n<<<\n")
	b.WriteString(req.Text)
	b.WriteString("\n>>>")
	return b.String()
}

// StripCodeFence removes a surrounding Markdown code fence of any language tag.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
