package textdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"verbatim/internal/textutil"
)

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
	maxRune      = 0x10FFFF
)

// maxDistinctTokens is the number of distinct tokens that can be encoded as
// valid, non-surrogate runes.
const maxDistinctTokens = maxRune + 1 - (surrogateMax - surrogateMin + 1)

// DiffWords returns the word-level edit script turning original into revised.
// The result is deterministic and satisfies Original(out) == original and
// Revised(out) == revised.
func DiffWords(original, revised string) []Segment {
	if original == revised {
		if original == "" {
			return nil
		}
		return []Segment{{Kind: Equal, Text: original}}
	}
	if original == "" {
		return []Segment{{Kind: Insert, Text: revised}}
	}
	if revised == "" {
		return []Segment{{Kind: Delete, Text: original}}
	}

	enc := newTokenEncoder()
	runesA := enc.encode(original)
	runesB := enc.encode(revised)
	if enc.overflow {
		return []Segment{{Kind: Delete, Text: original}, {Kind: Insert, Text: revised}}
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(runesA, runesB, false)

	raw := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		text := enc.decode(d.Text)
		if text == "" {
			continue
		}
		raw = append(raw, Segment{Kind: kindFromOperation(d.Type), Text: text})
	}
	return coalesce(raw)
}

func kindFromOperation(op diffmatchpatch.Operation) Kind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return Insert
	case diffmatchpatch.DiffDelete:
		return Delete
	default:
		return Equal
	}
}

// coalesce folds every run of non-equal segments into one Delete followed by
// one Insert and joins neighbouring Equal segments.
func coalesce(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	var deleted, inserted strings.Builder
	flush := func() {
		if deleted.Len() > 0 {
			out = append(out, Segment{Kind: Delete, Text: deleted.String()})
			deleted.Reset()
		}
		if inserted.Len() > 0 {
			out = append(out, Segment{Kind: Insert, Text: inserted.String()})
			inserted.Reset()
		}
	}
	for _, seg := range segments {
		switch seg.Kind {
		case Delete:
			deleted.WriteString(seg.Text)
		case Insert:
			inserted.WriteString(seg.Text)
		default:
			flush()
			if n := len(out); n > 0 && out[n-1].Kind == Equal {
				out[n-1].Text += seg.Text
				continue
			}
			out = append(out, seg)
		}
	}
	flush()
	return out
}

// tokenEncoder assigns each distinct token a rune so diff-match-patch can
// treat whole tokens as single characters.
type tokenEncoder struct {
	index    map[string]rune
	tokens   []string
	overflow bool
}

func newTokenEncoder() *tokenEncoder {
	return &tokenEncoder{index: make(map[string]rune)}
}

func (e *tokenEncoder) encode(text string) []rune {
	tokens := textutil.Tokens(text)
	out := make([]rune, 0, len(tokens))
	for _, tok := range tokens {
		r, ok := e.index[tok.Text]
		if !ok {
			if len(e.tokens) >= maxDistinctTokens {
				e.overflow = true
				return nil
			}
			r = runeForIndex(len(e.tokens))
			e.index[tok.Text] = r
			e.tokens = append(e.tokens, tok.Text)
		}
		out = append(out, r)
	}
	return out
}

func (e *tokenEncoder) decode(encoded string) string {
	var b strings.Builder
	for _, r := range encoded {
		idx := indexForRune(r)
		if idx < 0 || idx >= len(e.tokens) {
			continue
		}
		b.WriteString(e.tokens[idx])
	}
	return b.String()
}

func runeForIndex(i int) rune {
	if i >= surrogateMin {
		i += surrogateMax - surrogateMin + 1
	}
	return rune(i)
}

func indexForRune(r rune) int {
	i := int(r)
	if i > surrogateMax {
		i -= surrogateMax - surrogateMin + 1
	}
	return i
}
