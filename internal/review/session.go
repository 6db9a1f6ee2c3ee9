package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"verbatim/internal/chunking"
	"verbatim/internal/ctm"
	"verbatim/internal/logging"
	"verbatim/internal/services"
	"verbatim/internal/textdiff"
	"verbatim/internal/textutil"
	"verbatim/internal/timestamps"
)

// ChunkRequest is one call to the external reviser. Index is 0-based.
type ChunkRequest struct {
	PreviousTail string
	Text         string
	Index        int
	Total        int
	Start        float64
	End          float64
	Temperature  float64
	Model        string
	Instructions string
}

// Reviser returns a revised version of one transcript chunk.
type Reviser interface {
	ReviseChunk(ctx context.Context, req ChunkRequest) (string, error)
}

// Revision is a saved transcript version.
type Revision struct {
	TranscriptID   int64
	Text           string
	Words          ctm.Sequence
	EditedSegments []int
	ListenCounts   map[int]int
	Source         string
}

// Revision sources.
const (
	SourceImport = "import"
	SourceReview = "review"
	SourceEdit   = "edit"
)

// Persister stores a resolved revision.
type Persister interface {
	SaveRevision(ctx context.Context, rev Revision) error
}

// Renderer presents segments to an operator. Callbacks take indices into the
// segments as passed; a renderer must invoke them from the highest index to the
// lowest so earlier indices stay valid.
type Renderer interface {
	Render(segments []textdiff.Segment, onAccept, onReject func(int) error) error
}

// Options tunes a Session.
type Options struct {
	Planner                 chunking.Planner
	PreviousTailWords       int
	SimilarityWarnThreshold float64
	// Progress, when set, is called before each chunk is sent.
	Progress func(Progress)
}

// Progress reports which chunk is in flight.
type Progress struct {
	Chunk int
	Total int
	Span  chunking.Span
}

// Request is the input to Run.
type Request struct {
	TranscriptID int64
	Text         string
	Words        ctm.Sequence
	Instructions string
	Temperature  float64
	Model        string
	ListenCounts map[int]int
}

// Result is a completed reviser pass awaiting operator decisions.
type Result struct {
	SessionID  string
	Boundaries []float64
	Spans      []chunking.Span
	Revised    string
	Merge      *MergeState
	Warnings   []string
}

// Session runs chunked review against a Reviser.
type Session struct {
	reviser   Reviser
	persister Persister
	opts      Options
	logger    *slog.Logger
}

// NewSession builds a session. persister may be nil when results are not saved.
func NewSession(reviser Reviser, persister Persister, opts Options, logger *slog.Logger) *Session {
	return &Session{
		reviser:   reviser,
		persister: persister,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "review"),
	}
}

// Run plans chunks, revises them in order, and diffs the normalized result
// against the source text. If ctx is canceled nothing is returned.
func (s *Session) Run(ctx context.Context, req Request) (*Result, error) {
	if s.reviser == nil {
		return nil, services.Wrap(services.ErrConfiguration, "review", "run", "no reviser configured", nil)
	}
	sessionID := uuid.NewString()
	ctx = services.WithSessionID(ctx, sessionID)
	ctx = services.WithTranscriptID(ctx, req.TranscriptID)
	logger := logging.WithContext(ctx, s.logger)

	boundaries, err := s.opts.Planner.Plan(req.Words)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "review", "plan chunks", "", err)
	}
	chunks := chunking.ChunkTranscript(req.Text, req.Words, boundaries)
	spans := chunking.Spans(req.Words, boundaries)
	logger.Info("review started",
		logging.Int("chunks", len(chunks)),
		logging.Int("words", len(req.Words)),
		logging.Float64("duration_seconds", req.Words.Duration()),
	)

	result := &Result{SessionID: sessionID, Boundaries: boundaries, Spans: spans}
	revised := make([]string, 0, len(chunks))
	previous := ""
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, s.canceled(logger, i, err)
		}
		if s.opts.Progress != nil {
			s.opts.Progress(Progress{Chunk: i, Total: len(chunks), Span: spans[i]})
		}
		chunkCtx := services.WithChunkIndex(ctx, i+1)
		out, err := s.reviser.ReviseChunk(chunkCtx, ChunkRequest{
			PreviousTail: textutil.LastWords(previous, s.opts.PreviousTailWords),
			Text:         chunk,
			Index:        i,
			Total:        len(chunks),
			Start:        spans[i].Start,
			End:          spans[i].End,
			Temperature:  req.Temperature,
			Model:        req.Model,
			Instructions: req.Instructions,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) {
				if ctxErr == nil {
					ctxErr = err
				}
				return nil, s.canceled(logger, i, ctxErr)
			}
			return nil, services.Wrap(services.ErrExternalTool, "review", "revise chunk", fmt.Sprintf("chunk %d of %d", i+1, len(chunks)), err)
		}
		if warning := s.checkSimilarity(logging.WithContext(chunkCtx, s.logger), chunk, out); warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		revised = append(revised, out)
		previous = chunk
	}
	if err := ctx.Err(); err != nil {
		return nil, s.canceled(logger, len(chunks), err)
	}

	result.Revised = strings.TrimSpace(timestamps.Normalize(strings.Join(revised, "\n")))
	segments := textdiff.DiffWords(req.Text, result.Revised)
	result.Merge = NewMergeState(segments)

	summary := textdiff.Summarize(segments)
	logger.Info("review complete",
		logging.Int("changes", summary.Changes),
		logging.Int("inserted_words", summary.InsertedWords),
		logging.Int("deleted_words", summary.DeletedWords),
		logging.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (s *Session) canceled(logger *slog.Logger, chunk int, err error) error {
	logger.Info("review canceled; discarding partial results",
		logging.String(logging.FieldEventType, "review_canceled"),
		logging.Int("completed_chunks", chunk),
	)
	return services.Wrap(services.ErrCanceled, "review", "run", "partial results discarded", err)
}

func (s *Session) checkSimilarity(logger *slog.Logger, source, revised string) string {
	threshold := s.opts.SimilarityWarnThreshold
	if threshold <= 0 || textutil.NewFingerprint(source).TermCount() == 0 {
		return ""
	}
	score := textutil.Similarity(source, revised)
	if score >= threshold {
		return ""
	}
	warning := fmt.Sprintf("revised chunk similarity %.2f is below %.2f", score, threshold)
	logging.WarnWithContext(logger, "revised chunk diverges from source",
		"review_similarity_low",
		logging.Float64("similarity", score),
		logging.Float64("threshold", threshold),
		logging.String(logging.FieldErrorHint, "inspect the chunk diff before accepting"),
		logging.String(logging.FieldImpact, "accepting all changes may replace unrelated text"),
	)
	return warning
}

// Resolve lets renderer drive per-segment decisions on merge.
func Resolve(merge *MergeState, renderer Renderer) error {
	if renderer == nil {
		return services.Wrap(services.ErrConfiguration, "review", "resolve", "no renderer configured", nil)
	}
	return renderer.Render(merge.Segments(), merge.AcceptSegment, merge.RejectSegment)
}

// Save realigns word timings against the resolved text and persists the
// revision. It returns the revision that was stored.
func (s *Session) Save(ctx context.Context, req Request, merge *MergeState) (Revision, error) {
	final, err := merge.FinalText()
	if err != nil {
		return Revision{}, services.Wrap(services.ErrValidation, "review", "save", "", err)
	}
	if err := ctx.Err(); err != nil {
		return Revision{}, services.Wrap(services.ErrCanceled, "review", "save", "nothing persisted", err)
	}
	rev := BuildRevision(req.TranscriptID, req.Text, req.Words, final, SourceReview, req.ListenCounts, s.logger)
	if s.persister == nil {
		return rev, nil
	}
	if err := s.persister.SaveRevision(ctx, rev); err != nil {
		return Revision{}, fmt.Errorf("save revision: %w", err)
	}
	return rev, nil
}

// BuildRevision realigns words from oldText to newText, records which words
// of the new text were edited, and carries listen counts over to the words
// that survived.
func BuildRevision(transcriptID int64, oldText string, words ctm.Sequence, newText, source string, listenCounts map[int]int, logger *slog.Logger) Revision {
	realigned, _ := ctm.NewRealigner(logger).Realign(words, oldText, newText)
	segments := textdiff.DiffWords(oldText, newText)
	return Revision{
		TranscriptID:   transcriptID,
		Text:           newText,
		Words:          realigned,
		EditedSegments: EditedWordIndices(segments),
		ListenCounts:   RemapWordCounts(segments, listenCounts),
		Source:         source,
	}
}

// EditedWordIndices returns the positions, in the revised text, of words that
// came from Insert segments.
func EditedWordIndices(segments []textdiff.Segment) []int {
	var edited []int
	position := 0
	for _, seg := range segments {
		switch seg.Kind {
		case textdiff.Equal:
			position += textutil.WordCount(seg.Text)
		case textdiff.Insert:
			n := textutil.WordCount(seg.Text)
			for i := 0; i < n; i++ {
				edited = append(edited, position+i)
			}
			position += n
		}
	}
	return edited
}

// RemapWordCounts moves per-word counts keyed by original word index onto the
// revised text. Counts for deleted words are dropped.
func RemapWordCounts(segments []textdiff.Segment, counts map[int]int) map[int]int {
	if len(counts) == 0 {
		return nil
	}
	out := make(map[int]int)
	oldPos, newPos := 0, 0
	for _, seg := range segments {
		n := textutil.WordCount(seg.Text)
		switch seg.Kind {
		case textdiff.Equal:
			for i := 0; i < n; i++ {
				if c, ok := counts[oldPos+i]; ok && c != 0 {
					out[newPos+i] = c
				}
			}
			oldPos += n
			newPos += n
		case textdiff.Delete:
			oldPos += n
		case textdiff.Insert:
			newPos += n
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
