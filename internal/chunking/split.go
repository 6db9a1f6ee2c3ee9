package chunking

import (
	"strings"
	"unicode"

	"verbatim/internal/ctm"
	"verbatim/internal/textutil"
)

// Span describes one planned chunk.
type Span struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words int     `json:"words"`
}

// Duration returns the chunk length in seconds.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// Spans assigns each word to the chunk whose boundary range holds its start and
// reports the resulting timing per chunk. It always returns len(boundaries)+1 spans.
func Spans(seq ctm.Sequence, boundaries []float64) []Span {
	spans := make([]Span, len(boundaries)+1)
	for i := range spans {
		spans[i].Index = i
		if i > 0 {
			spans[i].Start = boundaries[i-1]
			spans[i].End = boundaries[i-1]
		}
	}
	chunk := 0
	for _, w := range seq {
		for chunk < len(boundaries) && w.Start >= boundaries[chunk] {
			chunk++
		}
		span := &spans[chunk]
		if span.Words == 0 {
			span.Start = w.Start
		}
		if w.End > span.End {
			span.End = w.End
		}
		span.Words++
	}
	return spans
}

// ChunkTranscript cuts text into len(boundaries)+1 pieces. Each cut falls
// before the first word whose timing starts at or after the boundary; word i of
// text is matched with seq[i]. The whitespace at a cut is dropped, so joining
// the pieces with single spaces restores text when its cut separators are
// single spaces.
func ChunkTranscript(text string, seq ctm.Sequence, boundaries []float64) []string {
	words := textutil.Words(text)
	cuts := make([]int, 0, len(boundaries))
	prev := 0
	next := 0
	for _, b := range boundaries {
		cut := len(text)
		for ; next < len(words) && next < len(seq); next++ {
			if seq[next].Start >= b {
				cut = words[next].Start
				break
			}
		}
		if cut < prev {
			cut = prev
		}
		cuts = append(cuts, cut)
		prev = cut
	}

	chunks := make([]string, 0, len(boundaries)+1)
	start := 0
	for _, cut := range cuts {
		chunks = append(chunks, strings.TrimRightFunc(text[start:cut], unicode.IsSpace))
		start = cut
	}
	chunks = append(chunks, text[start:])
	return chunks
}
