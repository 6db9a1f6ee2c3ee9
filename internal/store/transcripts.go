package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"verbatim/internal/services"
)

// CreateTranscript inserts an empty transcript. Names are unique.
func (s *Store) CreateTranscript(ctx context.Context, name string) (*Transcript, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create transcript", "name is required", nil)
	}
	existing, err := s.FindTranscriptByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, services.Wrap(services.ErrValidation, "store", "create transcript",
			fmt.Sprintf("transcript %q already exists", name), nil)
	}

	timestamp := nowString()
	res, err := s.exec(ctx,
		`INSERT INTO transcripts (name, created_at, updated_at) VALUES (?, ?, ?)`,
		name, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transcript: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTranscript(ctx, id)
}

// GetTranscript fetches a transcript by identifier. It returns nil when none exists.
func (s *Store) GetTranscript(ctx context.Context, id int64) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transcriptColumns+` FROM transcripts t WHERE t.id = ?`, id)
	t, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return t, nil
}

// FindTranscriptByName returns the transcript with the given name, or nil.
func (s *Store) FindTranscriptByName(ctx context.Context, name string) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transcriptColumns+` FROM transcripts t WHERE t.name = ?`,
		strings.TrimSpace(name),
	)
	t, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transcript: %w", err)
	}
	return t, nil
}

// RequireTranscript resolves name and reports ErrNotFound when it is missing.
func (s *Store) RequireTranscript(ctx context.Context, name string) (*Transcript, error) {
	t, err := s.FindTranscriptByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, services.Wrap(services.ErrNotFound, "store", "find transcript",
			fmt.Sprintf("no transcript named %q", name), nil)
	}
	return t, nil
}

// ListTranscripts returns every transcript, most recently updated first.
func (s *Store) ListTranscripts(ctx context.Context) ([]*Transcript, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transcriptColumns+` FROM transcripts t ORDER BY t.updated_at DESC, t.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []*Transcript
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTranscript removes a transcript and all of its revisions.
func (s *Store) DeleteTranscript(ctx context.Context, id int64) error {
	var removed int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM revisions WHERE transcript_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM transcripts WHERE id = ?`, id)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	if removed == 0 {
		return services.Wrap(services.ErrNotFound, "store", "delete transcript",
			fmt.Sprintf("transcript %d does not exist", id), nil)
	}
	return nil
}
