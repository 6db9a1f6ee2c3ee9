package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"verbatim/internal/logging"
	"verbatim/internal/review"
	"verbatim/internal/services"
	"verbatim/internal/store"
)

// RevisionStore is the part of store.Store the syncer needs.
type RevisionStore interface {
	LatestRevision(ctx context.Context, transcriptID int64) (*store.RevisionRecord, error)
	AppendRevision(ctx context.Context, rev review.Revision) (*store.RevisionRecord, error)
}

// Syncer turns edited text into revisions of one transcript.
type Syncer struct {
	store        RevisionStore
	transcriptID int64
	logger       *slog.Logger
	// OnSaved, when set, is called after each stored revision.
	OnSaved func(*store.RevisionRecord)
}

// NewSyncer builds a syncer for transcriptID.
func NewSyncer(st RevisionStore, transcriptID int64, logger *slog.Logger) *Syncer {
	return &Syncer{
		store:        st,
		transcriptID: transcriptID,
		logger:       logging.NewComponentLogger(logger, "watch"),
	}
}

// Sync realigns the latest revision's timings onto content and stores the
// result with source "edit". It returns nil without saving when the text is
// unchanged.
func (s *Syncer) Sync(ctx context.Context, content string) (*store.RevisionRecord, error) {
	ctx = services.WithTranscriptID(ctx, s.transcriptID)
	logger := logging.WithContext(ctx, s.logger)

	latest, err := s.store.LatestRevision(ctx, s.transcriptID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, services.Wrap(services.ErrNotFound, "watch", "sync",
			fmt.Sprintf("transcript %d has no revisions", s.transcriptID), nil)
	}

	text := strings.TrimSpace(content)
	if text == strings.TrimSpace(latest.Text) {
		logger.Debug("edit matches latest revision", logging.Int("version", latest.Version))
		return nil, nil
	}

	rev := review.BuildRevision(s.transcriptID, latest.Text, latest.Words, text, review.SourceEdit, latest.ListenCounts, s.logger)
	rec, err := s.store.AppendRevision(ctx, rev)
	if err != nil {
		return nil, err
	}
	logger.Info("edit saved",
		logging.String(logging.FieldEventType, "revision_saved"),
		logging.Int("version", rec.Version),
		logging.Int("edited_words", len(rec.EditedSegments)),
		logging.Int("words", len(rec.Words)),
	)
	if s.OnSaved != nil {
		s.OnSaved(rec)
	}
	return rec, nil
}

// Handler adapts Sync to a watcher Handler.
func (s *Syncer) Handler() Handler {
	return func(ctx context.Context, content string) error {
		_, err := s.Sync(ctx, content)
		return err
	}
}
