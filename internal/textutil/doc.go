// Package textutil provides the text primitives shared by the transcript
// engine: the canonical word tokenizer, token fingerprints for similarity
// checks, and filename sanitization.
//
// Tokens is the single definition of a word boundary in verbatim. The differ
// diffs its output and the CTM realigner and chunk planner count words with
// Words, which walks the same scan. Changing one without the other breaks the
// word index alignment between text and timing data, so always go through
// this package instead of strings.Fields or ad hoc regexes.
//
// Fingerprints use case-folded term frequency vectors and are only used for
// coarse "does this revision still look like its source" checks.
package textutil
