package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"verbatim/internal/ctm"
)

const transcriptColumns = `t.id, t.name, t.created_at, t.updated_at,
    COALESCE((SELECT MAX(version) FROM revisions r WHERE r.transcript_id = t.id), 0),
    (SELECT COUNT(1) FROM revisions r WHERE r.transcript_id = t.id)`

const revisionColumns = "id, transcript_id, version, text, words_json, edited_segments_json, listen_counts_json, source, created_at"

type scanner interface{ Scan(dest ...any) error }

func scanTranscript(row scanner) (*Transcript, error) {
	var (
		t          Transcript
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &createdRaw, &updatedRaw, &t.LatestVersion, &t.Revisions); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		t.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		t.UpdatedAt = updated
	}
	return &t, nil
}

func scanRevision(row scanner) (*RevisionRecord, error) {
	var (
		rec        RevisionRecord
		wordsJSON  string
		editedJSON sql.NullString
		listenJSON sql.NullString
		createdRaw sql.NullString
	)
	if err := row.Scan(
		&rec.ID,
		&rec.TranscriptID,
		&rec.Version,
		&rec.Text,
		&wordsJSON,
		&editedJSON,
		&listenJSON,
		&rec.Source,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(wordsJSON), &rec.Words); err != nil {
		return nil, fmt.Errorf("decode words for revision %d: %w", rec.ID, err)
	}
	if editedJSON.Valid && editedJSON.String != "" {
		if err := json.Unmarshal([]byte(editedJSON.String), &rec.EditedSegments); err != nil {
			return nil, fmt.Errorf("decode edited segments for revision %d: %w", rec.ID, err)
		}
	}
	if listenJSON.Valid && listenJSON.String != "" {
		if err := json.Unmarshal([]byte(listenJSON.String), &rec.ListenCounts); err != nil {
			return nil, fmt.Errorf("decode listen counts for revision %d: %w", rec.ID, err)
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		rec.CreatedAt = created
	}
	return &rec, nil
}

func encodeWords(words ctm.Sequence) (string, error) {
	if words == nil {
		words = ctm.Sequence{}
	}
	data, err := json.Marshal(words)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// nullableJSON marshals value, storing NULL for empty collections.
func nullableJSON(value any, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
