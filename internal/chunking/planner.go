package chunking

import (
	"errors"
	"fmt"
	"math"

	"verbatim/internal/ctm"
)

// DefaultMinTailFraction folds trailing chunks shorter than this share of the
// budget into their predecessor.
const DefaultMinTailFraction = 0.1

// ErrInvalidBoundaries marks a boundary list that is not strictly increasing or
// does not sit on word starts.
var ErrInvalidBoundaries = errors.New("invalid chunk boundaries")

// Planner chooses chunk boundaries for a word timing sequence.
type Planner struct {
	MaxSeconds float64
	// MaxWords closes a chunk once it holds this many words. 0 disables the limit.
	MaxWords        int
	MinTailFraction float64
}

// PlanChunks returns boundaries that keep every chunk within maxSeconds using
// the default tail policy.
func PlanChunks(seq ctm.Sequence, maxSeconds float64) ([]float64, error) {
	return Planner{MaxSeconds: maxSeconds, MinTailFraction: DefaultMinTailFraction}.Plan(seq)
}

// Plan returns strictly increasing boundary times, each equal to some word's
// start. An empty result means the whole transcript is one chunk.
func (p Planner) Plan(seq ctm.Sequence) ([]float64, error) {
	if len(seq) == 0 || p.MaxSeconds <= 0 {
		return nil, nil
	}
	total := seq.Duration()
	fitsWords := p.MaxWords <= 0 || len(seq) <= p.MaxWords
	if total <= p.MaxSeconds && fitsWords {
		return nil, nil
	}

	boundaries := p.mergeTail(seq, p.scan(seq, p.MaxSeconds))
	if total > p.MaxSeconds {
		// Balanced chunks win unless they cost an extra chunk.
		balanced := p.mergeTail(seq, p.scan(seq, total/math.Ceil(total/p.MaxSeconds)))
		if len(balanced) <= len(boundaries) {
			boundaries = balanced
		}
	}

	if err := ValidateBoundaries(seq, boundaries); err != nil {
		return nil, fmt.Errorf("plan chunks: %w", err)
	}
	return boundaries, nil
}

// scan closes a chunk at the first word that would push it past target.
func (p Planner) scan(seq ctm.Sequence, target float64) []float64 {
	var boundaries []float64
	chunkStart := 0.0
	count := 0
	for _, w := range seq {
		overTime := w.End-chunkStart > target
		overWords := p.MaxWords > 0 && count >= p.MaxWords
		if count > 0 && (overTime || overWords) && w.Start > chunkStart {
			boundaries = append(boundaries, w.Start)
			chunkStart = w.Start
			count = 0
		}
		count++
	}
	return boundaries
}

// mergeTail drops the last boundary when the trailing chunk is too short and
// the merged chunk still fits the budget.
func (p Planner) mergeTail(seq ctm.Sequence, boundaries []float64) []float64 {
	if len(boundaries) == 0 || p.MinTailFraction <= 0 {
		return boundaries
	}
	total := seq.Duration()
	last := boundaries[len(boundaries)-1]
	if total-last >= p.MinTailFraction*p.MaxSeconds {
		return boundaries
	}
	prev := 0.0
	if len(boundaries) > 1 {
		prev = boundaries[len(boundaries)-2]
	}
	if total-prev > p.MaxSeconds {
		return boundaries
	}
	if p.MaxWords > 0 && wordsFrom(seq, prev) > p.MaxWords {
		return boundaries
	}
	return boundaries[:len(boundaries)-1]
}

func wordsFrom(seq ctm.Sequence, start float64) int {
	n := 0
	for _, w := range seq {
		if w.Start >= start {
			n++
		}
	}
	return n
}

// ValidateBoundaries checks that boundaries are strictly increasing and each
// coincides with a word start in seq.
func ValidateBoundaries(seq ctm.Sequence, boundaries []float64) error {
	starts := make(map[float64]struct{}, len(seq))
	for _, w := range seq {
		starts[w.Start] = struct{}{}
	}
	for i, b := range boundaries {
		if i > 0 && b <= boundaries[i-1] {
			return fmt.Errorf("%w: boundary %d (%.3f) does not follow %.3f", ErrInvalidBoundaries, i, b, boundaries[i-1])
		}
		if _, ok := starts[b]; !ok {
			return fmt.Errorf("%w: boundary %d (%.3f) is not a word start", ErrInvalidBoundaries, i, b)
		}
	}
	return nil
}
