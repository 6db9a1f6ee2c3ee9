package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"verbatim/internal/review"
	"verbatim/internal/services"
)

var _ review.Persister = (*Store)(nil)

// SaveRevision stores rev as the next version of its transcript.
func (s *Store) SaveRevision(ctx context.Context, rev review.Revision) error {
	_, err := s.AppendRevision(ctx, rev)
	return err
}

// AppendRevision stores rev and returns the stored record with its version.
func (s *Store) AppendRevision(ctx context.Context, rev review.Revision) (*RevisionRecord, error) {
	if err := rev.Words.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "store", "save revision", "word timings are invalid", err)
	}
	source := strings.TrimSpace(rev.Source)
	if source == "" {
		source = review.SourceEdit
	}
	words, err := encodeWords(rev.Words)
	if err != nil {
		return nil, fmt.Errorf("encode words: %w", err)
	}
	edited, err := nullableJSON(rev.EditedSegments, len(rev.EditedSegments) == 0)
	if err != nil {
		return nil, fmt.Errorf("encode edited segments: %w", err)
	}
	listens, err := nullableJSON(rev.ListenCounts, len(rev.ListenCounts) == 0)
	if err != nil {
		return nil, fmt.Errorf("encode listen counts: %w", err)
	}

	var id int64
	missing := false
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		missing = false
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM transcripts WHERE id = ?`, rev.TranscriptID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			missing = true
			return nil
		}
		var version int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM revisions WHERE transcript_id = ?`, rev.TranscriptID,
		).Scan(&version); err != nil {
			return err
		}
		timestamp := nowString()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO revisions (
                transcript_id, version, text, words_json, edited_segments_json,
                listen_counts_json, source, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rev.TranscriptID, version, rev.Text, words, edited, listens, source, timestamp,
		)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE transcripts SET updated_at = ? WHERE id = ?`, timestamp, rev.TranscriptID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("save revision: %w", err)
	}
	if missing {
		return nil, services.Wrap(services.ErrNotFound, "store", "save revision",
			fmt.Sprintf("transcript %d does not exist", rev.TranscriptID), nil)
	}
	return s.GetRevisionByID(ctx, id)
}

// GetRevisionByID fetches a revision by row identifier, or nil.
func (s *Store) GetRevisionByID(ctx context.Context, id int64) (*RevisionRecord, error) {
	return s.queryRevision(ctx, `SELECT `+revisionColumns+` FROM revisions WHERE id = ?`, id)
}

// GetRevision fetches one version of a transcript, or nil.
func (s *Store) GetRevision(ctx context.Context, transcriptID int64, version int) (*RevisionRecord, error) {
	return s.queryRevision(ctx,
		`SELECT `+revisionColumns+` FROM revisions WHERE transcript_id = ? AND version = ?`,
		transcriptID, version,
	)
}

// LatestRevision returns the highest version of a transcript, or nil when it has none.
func (s *Store) LatestRevision(ctx context.Context, transcriptID int64) (*RevisionRecord, error) {
	return s.queryRevision(ctx,
		`SELECT `+revisionColumns+` FROM revisions WHERE transcript_id = ? ORDER BY version DESC LIMIT 1`,
		transcriptID,
	)
}

// ListRevisions returns all versions of a transcript in ascending order.
func (s *Store) ListRevisions(ctx context.Context, transcriptID int64) ([]*RevisionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+revisionColumns+` FROM revisions WHERE transcript_id = ? ORDER BY version`,
		transcriptID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var out []*RevisionRecord
	for rows.Next() {
		rec, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) queryRevision(ctx context.Context, query string, args ...any) (*RevisionRecord, error) {
	rec, err := scanRevision(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return rec, nil
}
