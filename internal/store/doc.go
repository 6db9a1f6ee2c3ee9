// Package store persists transcripts and their revision history in SQLite.
//
// Every saved version of a transcript is a revision row carrying the text, the
// realigned word timings, and the analytics gathered while it was edited.
// Versions start at 1 and increase by one per transcript. Store implements
// review.Persister so a review session can save straight into it.
//
// The schema is a list of embedded SQL migrations counted by PRAGMA
// user_version. Opening an older database migrates it forward; a newer one
// is refused with ErrSchemaMismatch.
package store
