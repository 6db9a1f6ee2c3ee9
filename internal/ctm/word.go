package ctm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Word is one timing record.
type Word struct {
	Text    string  `json:"word"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Punct   string  `json:"punct"`
	Index   int     `json:"index"`
	Speaker string  `json:"speaker"`
}

// Duration returns the word's length in seconds.
func (w Word) Duration() float64 {
	return w.End - w.Start
}

// Sequence is an ordered list of words in document order.
type Sequence []Word

// ErrInvalidSequence marks a sequence that breaks a timing invariant.
var ErrInvalidSequence = errors.New("invalid ctm sequence")

// Validate checks that every word has Start <= End and that indices are dense
// and increasing from zero.
func (s Sequence) Validate() error {
	for i, w := range s {
		if w.Start > w.End {
			return fmt.Errorf("%w: word %d %q starts at %.3f after it ends at %.3f", ErrInvalidSequence, i, w.Text, w.Start, w.End)
		}
		if w.Index != i {
			return fmt.Errorf("%w: word %d %q has index %d", ErrInvalidSequence, i, w.Text, w.Index)
		}
	}
	return nil
}

// Duration is the end time of the last word.
func (s Sequence) Duration() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].End
}

// Text joins the word texts with single spaces.
func (s Sequence) Text() string {
	words := make([]string, len(s))
	for i, w := range s {
		words[i] = w.Text
	}
	return strings.Join(words, " ")
}

// Reindex assigns dense indices in place.
func (s Sequence) Reindex() {
	for i := range s {
		s[i].Index = i
	}
}

// Clone returns an independent copy.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Decode reads a JSON array of words.
func Decode(r io.Reader) (Sequence, error) {
	var seq Sequence
	if err := json.NewDecoder(r).Decode(&seq); err != nil {
		return nil, fmt.Errorf("decode ctm: %w", err)
	}
	return seq, nil
}

// Load reads and validates a CTM JSON file.
func Load(path string) (Sequence, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ctm: %w", err)
	}
	defer file.Close()
	seq, err := Decode(file)
	if err != nil {
		return nil, err
	}
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return seq, nil
}

// Encode writes the sequence as indented JSON.
func Encode(w io.Writer, seq Sequence) error {
	if seq == nil {
		seq = Sequence{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(seq); err != nil {
		return fmt.Errorf("encode ctm: %w", err)
	}
	return nil
}
