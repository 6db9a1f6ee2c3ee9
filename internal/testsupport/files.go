package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"verbatim/internal/ctm"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// EvenWords gives each whitespace-separated word of text a slot of span seconds.
func EvenWords(text string, span float64) ctm.Sequence {
	fields := strings.Fields(text)
	seq := make(ctm.Sequence, len(fields))
	for i, f := range fields {
		seq[i] = ctm.Word{
			Text:  f,
			Start: float64(i) * span,
			End:   float64(i+1) * span,
			Index: i,
		}
	}
	return seq
}
