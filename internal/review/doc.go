// Package review coordinates automated transcript review.
//
// A Session plans chunks from word timings, sends each chunk to a Reviser in
// order, normalizes inline timestamps in the combined output, and diffs it
// against the source transcript. The resulting MergeState lets an operator
// accept or reject each change; pairs of adjacent deletions and insertions are
// treated as one substitution so bulk and per-segment resolution agree.
//
// Once resolved, Save realigns word timings against the final text and hands
// the revision to a Persister. Canceling the context at any point before Save
// discards all partial results.
package review
