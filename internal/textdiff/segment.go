package textdiff

import (
	"fmt"
	"strings"

	"verbatim/internal/textutil"
)

// Kind classifies a diff segment.
type Kind int

const (
	Equal Kind = iota
	Insert
	Delete
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind as its lowercase name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Equal, Insert, Delete:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("textdiff: unknown kind %d", int(k))
	}
}

// UnmarshalText decodes a lowercase kind name.
func (k *Kind) UnmarshalText(data []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(data))) {
	case "equal":
		*k = Equal
	case "insert":
		*k = Insert
	case "delete":
		*k = Delete
	default:
		return fmt.Errorf("textdiff: unknown kind %q", string(data))
	}
	return nil
}

// Segment is one span of an edit script.
type Segment struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Original rebuilds the first diff input from Equal and Delete segments.
func Original(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind != Insert {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// Revised rebuilds the second diff input from Equal and Insert segments.
func Revised(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind != Delete {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// Summary counts words per segment kind.
type Summary struct {
	EqualWords    int `json:"equal_words"`
	InsertedWords int `json:"inserted_words"`
	DeletedWords  int `json:"deleted_words"`
	Changes       int `json:"changes"`
}

// Summarize counts the words carried by each kind of segment. Changes counts
// actionable segments, with a Delete/Insert pair counted once.
func Summarize(segments []Segment) Summary {
	var s Summary
	for i, seg := range segments {
		words := textutil.WordCount(seg.Text)
		switch seg.Kind {
		case Equal:
			s.EqualWords += words
		case Insert:
			s.InsertedWords += words
			if i == 0 || segments[i-1].Kind != Delete {
				s.Changes++
			}
		case Delete:
			s.DeletedWords += words
			s.Changes++
		}
	}
	return s
}

// HasChanges reports whether any segment is an Insert or Delete.
func HasChanges(segments []Segment) bool {
	for _, seg := range segments {
		if seg.Kind != Equal {
			return true
		}
	}
	return false
}
