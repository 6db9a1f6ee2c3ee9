package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"verbatim/internal/ctm"
	"verbatim/internal/testsupport"
)

func TestDiffCommandJSON(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a.txt")
	revised := filepath.Join(dir, "b.txt")
	testsupport.WriteFile(t, original, "the quick fox jumps\n")
	testsupport.WriteFile(t, revised, "the quick brown fox leaps\n")

	out, _, err := runCLI(t, []string{"diff", "--json", original, revised}, "")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	var got diffOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.Summary.InsertedWords != 2 || got.Summary.DeletedWords != 1 {
		t.Fatalf("unexpected summary %+v", got.Summary)
	}
	if len(got.Segments) == 0 {
		t.Fatal("expected segments")
	}
}

func TestDiffCommandPlainMarksChanges(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a.txt")
	revised := filepath.Join(dir, "b.txt")
	testsupport.WriteFile(t, original, "keep this word")
	testsupport.WriteFile(t, revised, "keep that word")

	out, _, err := runCLI(t, []string{"diff", original, revised}, "")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	requireContains(t, out, "[-this-]")
	requireContains(t, out, "{+that+}")
	requireContains(t, out, "1 changes")
}

func TestDiffCommandMissingFile(t *testing.T) {
	_, _, err := runCLI(t, []string{"diff", "/nonexistent/a.txt", "/nonexistent/b.txt"}, "")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalizeCommandReadsStdin(t *testing.T) {
	out, _, err := runCLIWithInput(t, []string{"normalize"}, "", strings.NewReader("intro 00:01:05.5 words here"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	requireContains(t, out, "\n0:01:05.5 words here")
}

func TestRealignCommandWritesTimings(t *testing.T) {
	dir := t.TempDir()
	oldPath, ctmPath := writeTimedTranscript(t, dir, "old", "alpha beta gamma delta", 1)
	newPath := filepath.Join(dir, "new.txt")
	testsupport.WriteFile(t, newPath, "alpha beta new gamma delta\n")
	outPath := filepath.Join(dir, "out.json")

	out, _, err := runCLI(t, []string{"realign", "--ctm", ctmPath, "--old", oldPath, "--new", newPath, "--out", outPath}, "")
	if err != nil {
		t.Fatalf("realign: %v", err)
	}
	requireContains(t, out, "inserted 1")

	seq, err := ctm.Load(outPath)
	if err != nil {
		t.Fatalf("load realigned: %v", err)
	}
	if got := seq.Text(); got != "alpha beta new gamma delta" {
		t.Fatalf("realigned text = %q", got)
	}
}

func TestChunkCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	text := "one two three four five six seven eight nine ten"
	textPath, ctmPath := writeTimedTranscript(t, env.baseDir, "talk", text, 10)

	out, _, err := runCLI(t, []string{"chunk", "--ctm", ctmPath, "--text", textPath, "--max-seconds", "40", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	var got chunkOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(got.Chunks) != len(got.Boundaries)+1 {
		t.Fatalf("%d chunks for %d boundaries", len(got.Chunks), len(got.Boundaries))
	}
	if len(got.Chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for 100s at 40s max, got %d", len(got.Chunks))
	}
	words := 0
	var joined []string
	for _, c := range got.Chunks {
		if c.Duration() > 40 {
			t.Fatalf("chunk %d lasts %.1fs", c.Index, c.Duration())
		}
		words += c.Words
		joined = append(joined, c.Text)
	}
	if words != 10 {
		t.Fatalf("chunks cover %d words, want 10", words)
	}
	if strings.Join(strings.Fields(strings.Join(joined, " ")), " ") != text {
		t.Fatalf("chunk texts do not reassemble the transcript: %q", joined)
	}
}

func TestChunkCommandRejectsNonPositiveLimit(t *testing.T) {
	env := setupCLITestEnv(t)
	_, ctmPath := writeTimedTranscript(t, env.baseDir, "talk", "one two", 1)

	_, _, err := runCLI(t, []string{"chunk", "--ctm", ctmPath, "--max-seconds", "0"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for zero max-seconds")
	}
}
