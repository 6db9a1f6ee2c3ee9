// Package preflight provides readiness checks for the directories and the
// reviser endpoint that verbatim depends on.
//
// The "verbatim status" command runs RunAll and prints each Result.
package preflight
