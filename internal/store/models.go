package store

import (
	"time"

	"verbatim/internal/review"
)

// Transcript is a named document with a revision history.
type Transcript struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	// LatestVersion is 0 when no revision has been saved yet.
	LatestVersion int
	Revisions     int
}

// RevisionRecord is a stored revision with its assigned version.
type RevisionRecord struct {
	review.Revision
	ID        int64
	Version   int
	CreatedAt time.Time
}

// DatabaseHealth captures diagnostic information about the database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	MissingTables    []string
	IntegrityCheck   bool
	Transcripts      int
	Revisions        int
	Error            string
}
