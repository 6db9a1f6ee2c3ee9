package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, NewFingerprint("hello world"), 0},
		{"b nil", NewFingerprint("hello world"), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog"
	got := CosineSimilarity(NewFingerprint(text), NewFingerprint(text))
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", got)
	}
}

func TestSimilarityIgnoresCaseAndTimestamps(t *testing.T) {
	a := "0:00:01.0 S1: Hello there, General Kenobi."
	b := "0:00:01.5 S1: hello there general kenobi"
	got := Similarity(a, b)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("Similarity = %v, want 1.0", got)
	}
}

func TestSimilarityUnrelated(t *testing.T) {
	if got := Similarity("apple banana cherry", "dog elephant frog"); got != 0 {
		t.Fatalf("Similarity(unrelated) = %v, want 0", got)
	}
}

func TestSimilarityBothEmpty(t *testing.T) {
	if got := Similarity("", "  1:02:03.4 "); got != 1 {
		t.Fatalf("Similarity(empty) = %v, want 1", got)
	}
}

func TestCosineSimilarityPartialOverlap(t *testing.T) {
	got := CosineSimilarity(NewFingerprint("the quick brown fox"), NewFingerprint("the slow brown cat"))
	if got <= 0 || got >= 1 {
		t.Errorf("CosineSimilarity(partial) = %v, want between 0 and 1", got)
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := NewFingerprint("hello world program")
	b := NewFingerprint("world program test")
	if ab, ba := CosineSimilarity(a, b), CosineSimilarity(b, a); ab != ba {
		t.Errorf("CosineSimilarity not symmetric: (%v, %v)", ab, ba)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"Board Meeting: Q3":  "Board_Meeting-_Q3",
		"  a/b\\c  ":         "a-b-c",
		"what?":              "what",
		"":                   "",
		"multi   space\tname": "multi_space_name",
	}
	for input, want := range tests {
		if got := SanitizeFileName(input); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}
