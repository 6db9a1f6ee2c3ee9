// Package chunking splits a timed transcript into bounded pieces for review.
//
// Plan chooses boundary times from a word timing sequence so no chunk spans
// more than the configured number of seconds (or words). Boundaries always sit
// on a word's start time, never inside a word. ChunkTranscript then cuts the
// transcript text at those boundaries using the same tokenization as the word
// differ, and Spans reports the timing of each resulting chunk.
package chunking
