package textutil

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// termSplitPattern matches runs that separate fingerprint terms.
var termSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

var folder = cases.Fold()

// Fingerprint represents a term-frequency vector for text similarity comparison.
type Fingerprint struct {
	terms map[string]float64
	norm  float64
}

// NewFingerprint creates a fingerprint from the provided text.
// Returns nil if the text produces no usable terms.
func NewFingerprint(text string) *Fingerprint {
	terms := Terms(text)
	if len(terms) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{terms: counts, norm: math.Sqrt(norm)}
}

// Terms case-folds text and splits it into letter/digit terms. Purely numeric
// terms (the pieces of inline timestamps) and single-rune terms are dropped.
func Terms(text string) []string {
	folded := folder.String(text)
	raw := termSplitPattern.Split(folded, -1)
	terms := make([]string, 0, len(raw))
	for _, term := range raw {
		term = strings.TrimSpace(term)
		if len([]rune(term)) < 2 {
			continue
		}
		if isDigits(term) {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// TermCount returns the number of distinct terms in the fingerprint.
func (f *Fingerprint) TermCount() int {
	if f == nil {
		return 0
	}
	return len(f.terms)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
