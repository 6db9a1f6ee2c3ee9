package services

import "context"

type contextKey string

const (
	sessionIDKey    contextKey = "session_id"
	transcriptIDKey contextKey = "transcript_id"
	chunkIndexKey   contextKey = "chunk_index"
	requestIDKey    contextKey = "request_id"
)

// WithSessionID annotates context with the review session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the review session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTranscriptID annotates context with the stored transcript identifier.
func WithTranscriptID(ctx context.Context, id int64) context.Context {
	if id <= 0 {
		return ctx
	}
	return context.WithValue(ctx, transcriptIDKey, id)
}

// TranscriptIDFromContext extracts the stored transcript identifier if present.
func TranscriptIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(transcriptIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithChunkIndex annotates context with the 1-based chunk position.
func WithChunkIndex(ctx context.Context, index int) context.Context {
	if index <= 0 {
		return ctx
	}
	return context.WithValue(ctx, chunkIndexKey, index)
}

// ChunkIndexFromContext returns the chunk position if present.
func ChunkIndexFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(chunkIndexKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
