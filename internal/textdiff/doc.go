// Package textdiff computes word-granularity edit scripts between two
// transcript versions.
//
// Both inputs are split with textutil.Tokens, each distinct token is mapped to
// a single rune, and the rune streams are diffed with diff-match-patch (the
// "word mode" trick). Whitespace runs are tokens too, so the segments
// reproduce both inputs byte for byte: Original keeps Equal and Delete text,
// Revised keeps Equal and Insert text.
//
// Every change run between two Equal segments is emitted as at most one
// Delete followed by at most one Insert. A replaced word therefore always
// shows up as an adjacent Delete/Insert pair, which the review merge engine
// treats as a single substitution.
package textdiff
