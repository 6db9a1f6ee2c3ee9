package testsupport

import (
	"context"
	"testing"

	"verbatim/internal/config"
	"verbatim/internal/ctm"
	"verbatim/internal/review"
	"verbatim/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustImport creates a transcript named name with text and words as version 1.
func MustImport(t testing.TB, st *store.Store, name, text string, words ctm.Sequence) *store.Transcript {
	t.Helper()

	ctx := context.Background()
	tr, err := st.CreateTranscript(ctx, name)
	if err != nil {
		t.Fatalf("CreateTranscript: %v", err)
	}
	if err := st.SaveRevision(ctx, review.Revision{
		TranscriptID: tr.ID,
		Text:         text,
		Words:        words,
		Source:       review.SourceImport,
	}); err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}
	return tr
}
