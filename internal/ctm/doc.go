// Package ctm models per-word timing marks (CTM) and keeps them aligned with
// transcript text as it is edited.
//
// A Sequence is ordered by document position, which is also time order. It is
// owned by the transcript: callers replace it wholesale when a transcript is
// re-derived, or patch it through Realign after an edit. Realign diffs the old
// and new text with textdiff, copies timings for unchanged words, drops the
// timings of deleted words, and interpolates timings for inserted words
// between their neighbours.
package ctm
