package review

import (
	"errors"
	"fmt"
	"strings"

	"verbatim/internal/textdiff"
)

var (
	// ErrSegmentIndex marks an accept or reject call outside the segment list.
	ErrSegmentIndex = errors.New("segment index out of range")
	// ErrUnresolved marks a request for final text while changes are pending.
	ErrUnresolved = errors.New("merge has unresolved segments")
)

// State is the lifecycle position of a MergeState.
type State int

const (
	// Pending means at least one insert or delete is awaiting a decision.
	Pending State = iota
	// Resolved means every segment is Equal.
	Resolved
)

func (s State) String() string {
	if s == Resolved {
		return "resolved"
	}
	return "pending"
}

// MergeState holds the diff segments under review.
type MergeState struct {
	segments []textdiff.Segment
	accepted int
	rejected int
}

// NewMergeState copies segments into a new merge.
func NewMergeState(segments []textdiff.Segment) *MergeState {
	cp := make([]textdiff.Segment, len(segments))
	copy(cp, segments)
	return &MergeState{segments: cp}
}

// Segments returns a copy of the current segments.
func (m *MergeState) Segments() []textdiff.Segment {
	cp := make([]textdiff.Segment, len(m.segments))
	copy(cp, m.segments)
	return cp
}

// Len returns the current number of segments.
func (m *MergeState) Len() int {
	return len(m.segments)
}

// State reports whether decisions remain.
func (m *MergeState) State() State {
	if m.PendingCount() > 0 {
		return Pending
	}
	return Resolved
}

// PendingCount counts decisions still open. A substitution pair counts once.
func (m *MergeState) PendingCount() int {
	return len(Units(m.segments))
}

// Decisions reports how many units were accepted and rejected so far.
func (m *MergeState) Decisions() (accepted, rejected int) {
	return m.accepted, m.rejected
}

// AcceptSegment keeps the revised side of the change at index. A substitution
// pair collapses into one Equal segment holding the inserted text; a lone
// insert or delete becomes Equal with its text unchanged.
func (m *MergeState) AcceptSegment(index int) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	if lo, ok := m.pairAt(index); ok {
		m.collapse(lo, m.segments[lo+1].Text)
		m.accepted++
		return nil
	}
	if m.segments[index].Kind == textdiff.Equal {
		return nil
	}
	m.segments[index].Kind = textdiff.Equal
	m.accepted++
	return nil
}

// RejectSegment keeps the original side of the change at index. A substitution
// pair collapses into one Equal segment holding the deleted text; a lone insert
// is removed; a lone delete becomes Equal.
func (m *MergeState) RejectSegment(index int) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	if lo, ok := m.pairAt(index); ok {
		m.collapse(lo, m.segments[lo].Text)
		m.rejected++
		return nil
	}
	switch m.segments[index].Kind {
	case textdiff.Insert:
		m.segments = append(m.segments[:index], m.segments[index+1:]...)
	case textdiff.Delete:
		m.segments[index].Kind = textdiff.Equal
	default:
		return nil
	}
	m.rejected++
	return nil
}

// AcceptAll resolves every pending change in favour of the revision.
func (m *MergeState) AcceptAll() {
	m.resolveAll(true)
}

// RejectAll resolves every pending change in favour of the original.
func (m *MergeState) RejectAll() {
	m.resolveAll(false)
}

func (m *MergeState) resolveAll(accept bool) {
	out := make([]textdiff.Segment, 0, len(m.segments))
	for i := 0; i < len(m.segments); i++ {
		seg := m.segments[i]
		if seg.Kind == textdiff.Delete && i+1 < len(m.segments) && m.segments[i+1].Kind == textdiff.Insert {
			text := seg.Text
			if accept {
				text = m.segments[i+1].Text
			}
			out = append(out, textdiff.Segment{Kind: textdiff.Equal, Text: text})
			m.count(accept)
			i++
			continue
		}
		switch seg.Kind {
		case textdiff.Insert:
			m.count(accept)
			if !accept {
				continue
			}
		case textdiff.Delete:
			m.count(accept)
		}
		out = append(out, textdiff.Segment{Kind: textdiff.Equal, Text: seg.Text})
	}
	m.segments = out
}

func (m *MergeState) count(accept bool) {
	if accept {
		m.accepted++
	} else {
		m.rejected++
	}
}

// FinalText concatenates the resolved segments.
func (m *MergeState) FinalText() (string, error) {
	if m.State() != Resolved {
		return "", fmt.Errorf("final text: %w (%d pending)", ErrUnresolved, m.PendingCount())
	}
	var b strings.Builder
	for _, seg := range m.segments {
		b.WriteString(seg.Text)
	}
	return b.String(), nil
}

// Preview renders the text that accepting every pending change would give. It
// is for display only.
func (m *MergeState) Preview() string {
	return textdiff.Revised(m.segments)
}

func (m *MergeState) checkIndex(index int) error {
	if index < 0 || index >= len(m.segments) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSegmentIndex, index, len(m.segments))
	}
	return nil
}

// pairAt returns the index of the Delete half when index belongs to an adjacent
// Delete+Insert pair.
func (m *MergeState) pairAt(index int) (int, bool) {
	switch m.segments[index].Kind {
	case textdiff.Delete:
		if index+1 < len(m.segments) && m.segments[index+1].Kind == textdiff.Insert {
			return index, true
		}
	case textdiff.Insert:
		if index > 0 && m.segments[index-1].Kind == textdiff.Delete {
			return index - 1, true
		}
	}
	return 0, false
}

func (m *MergeState) collapse(lo int, text string) {
	m.segments[lo] = textdiff.Segment{Kind: textdiff.Equal, Text: text}
	m.segments = append(m.segments[:lo+1], m.segments[lo+2:]...)
}

// UnitKind classifies a reviewable change.
type UnitKind int

const (
	UnitInsert UnitKind = iota
	UnitDelete
	UnitSubstitution
)

func (k UnitKind) String() string {
	switch k {
	case UnitInsert:
		return "insert"
	case UnitDelete:
		return "delete"
	default:
		return "substitution"
	}
}

// Unit is one decision a reviewer makes. Index is the segment index to pass to
// AcceptSegment or RejectSegment; for substitutions it is the Delete half.
type Unit struct {
	Index    int
	Kind     UnitKind
	Original string
	Revised  string
}

// Units lists the pending decisions in segments, in document order.
func Units(segments []textdiff.Segment) []Unit {
	var units []Unit
	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		switch seg.Kind {
		case textdiff.Delete:
			if i+1 < len(segments) && segments[i+1].Kind == textdiff.Insert {
				units = append(units, Unit{Index: i, Kind: UnitSubstitution, Original: seg.Text, Revised: segments[i+1].Text})
				i++
				continue
			}
			units = append(units, Unit{Index: i, Kind: UnitDelete, Original: seg.Text})
		case textdiff.Insert:
			units = append(units, Unit{Index: i, Kind: UnitInsert, Revised: seg.Text})
		}
	}
	return units
}
