package main

import (
	"errors"
	"strings"
	"testing"

	"verbatim/internal/review"
	"verbatim/internal/services"
	"verbatim/internal/textdiff"
)

func TestTerminalRendererAppliesAnswers(t *testing.T) {
	merge := review.NewMergeState(textdiff.DiffWords("one two three four", "one TWO three four five"))
	var out strings.Builder
	renderer := newTerminalRenderer(strings.NewReader("a\nr\n"), &out, false)

	if err := review.Resolve(merge, renderer); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	final, err := merge.FinalText()
	if err != nil {
		t.Fatalf("FinalText: %v", err)
	}
	if final != "one TWO three four" {
		t.Fatalf("final = %q", final)
	}
	requireContains(t, out.String(), "[1/2]")
	requireContains(t, out.String(), "[-two-]{+TWO+}")
}

func TestTerminalRendererRejectRest(t *testing.T) {
	merge := review.NewMergeState(textdiff.DiffWords("a b c d", "x b y d z"))
	renderer := newTerminalRenderer(strings.NewReader("R\n"), &strings.Builder{}, false)

	if err := review.Resolve(merge, renderer); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	final, err := merge.FinalText()
	if err != nil {
		t.Fatalf("FinalText: %v", err)
	}
	if final != "a b c d" {
		t.Fatalf("final = %q", final)
	}
	_, rejected := merge.Decisions()
	if rejected != 3 {
		t.Fatalf("rejected = %d, want 3", rejected)
	}
}

func TestTerminalRendererRepromptsAndQuits(t *testing.T) {
	merge := review.NewMergeState(textdiff.DiffWords("a b", "a c"))
	var out strings.Builder
	renderer := newTerminalRenderer(strings.NewReader("maybe\nq\n"), &out, false)

	err := review.Resolve(merge, renderer)
	if !errors.Is(err, services.ErrCanceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	requireContains(t, out.String(), "please answer")
	if merge.State() != review.Pending {
		t.Fatal("quitting must leave the merge untouched")
	}
}

func TestTerminalRendererEOFCancels(t *testing.T) {
	merge := review.NewMergeState(textdiff.DiffWords("a b", "a c"))
	renderer := newTerminalRenderer(strings.NewReader(""), &strings.Builder{}, false)

	if err := review.Resolve(merge, renderer); !errors.Is(err, services.ErrCanceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestRenderUnitShowsContext(t *testing.T) {
	segments := textdiff.DiffWords("we went to the old market today", "we went to the new market today")
	units := review.Units(segments)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	got := renderUnit(segments, units[0], false)
	requireContains(t, got, "the [-old-]{+new+} market today")
}
