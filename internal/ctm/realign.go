package ctm

import (
	"log/slog"

	"verbatim/internal/logging"
	"verbatim/internal/textdiff"
	"verbatim/internal/textutil"
)

// placeholderSpan is the gap assumed after the last known word when words are
// appended at the end of the document.
const placeholderSpan = 1.0

// Stats counts what a realignment did with each word.
type Stats struct {
	Kept     int
	Inserted int
	Deleted  int
}

// Realign produces timings for newText given the timings of oldText.
func Realign(old Sequence, oldText, newText string) Sequence {
	seq, _ := realign(old, oldText, newText)
	return seq
}

func realign(old Sequence, oldText, newText string) (Sequence, Stats) {
	var stats Stats
	out := make(Sequence, 0, textutil.WordCount(newText))
	oldCursor := 0

	for _, seg := range textdiff.DiffWords(oldText, newText) {
		words := textutil.WordTexts(seg.Text)
		if len(words) == 0 {
			continue
		}
		switch seg.Kind {
		case textdiff.Delete:
			oldCursor += len(words)
			stats.Deleted += len(words)
		case textdiff.Insert:
			out = appendInterpolated(out, words, old, oldCursor)
			stats.Inserted += len(words)
		case textdiff.Equal:
			for _, text := range words {
				if oldCursor >= len(old) {
					// Text has more words than the timing data; treat the rest
					// as inserted at the end.
					out = appendInterpolated(out, []string{text}, old, oldCursor)
					stats.Inserted++
					continue
				}
				w := old[oldCursor]
				w.Text = text
				w.Index = len(out)
				out = append(out, w)
				oldCursor++
				stats.Kept++
			}
		}
	}
	out.Reindex()
	return out, stats
}

func appendInterpolated(out Sequence, words []string, old Sequence, oldCursor int) Sequence {
	prevEnd := 0.0
	speaker := ""
	if n := len(out); n > 0 {
		prevEnd = out[n-1].End
		speaker = out[n-1].Speaker
	}
	nextStart := prevEnd + placeholderSpan
	if oldCursor < len(old) {
		nextStart = old[oldCursor].Start
	}
	gap := nextStart - prevEnd
	if gap < 0 {
		gap = 0
	}
	step := gap / float64(len(words)+1)
	for i, text := range words {
		out = append(out, Word{
			Text:    text,
			Start:   prevEnd + float64(i+1)*step,
			End:     prevEnd + float64(i+2)*step,
			Index:   len(out),
			Speaker: speaker,
		})
	}
	return out
}

// Realigner runs Realign and logs what changed.
type Realigner struct {
	logger *slog.Logger
}

// NewRealigner returns a realigner that logs through logger.
func NewRealigner(logger *slog.Logger) *Realigner {
	return &Realigner{logger: logging.NewComponentLogger(logger, "ctm")}
}

// Realign behaves like the package-level Realign and also reports stats.
func (r *Realigner) Realign(old Sequence, oldText, newText string) (Sequence, Stats) {
	seq, stats := realign(old, oldText, newText)
	oldWords := textutil.WordCount(oldText)
	if oldWords != len(old) {
		logging.WarnWithContext(r.logger, "ctm word count does not match transcript text", "ctm_mismatch",
			logging.Int("ctm_words", len(old)),
			logging.Int("text_words", oldWords),
			logging.String(logging.FieldErrorHint, "re-import the transcript with matching ctm data"),
			logging.String(logging.FieldImpact, "timings after the mismatch are approximate"),
		)
	}
	r.logger.Debug("ctm realigned",
		logging.String(logging.FieldEventType, "ctm_realign"),
		logging.Int("kept", stats.Kept),
		logging.Int("inserted", stats.Inserted),
		logging.Int("deleted", stats.Deleted),
		logging.Int("words", len(seq)),
	)
	return seq, stats
}
