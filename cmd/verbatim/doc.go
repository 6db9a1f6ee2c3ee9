// Package main hosts the verbatim CLI entrypoint and command graph.
//
// The Cobra command tree covers the stateless text tools (diff, realign,
// chunk, normalize) and the store-backed workflow: importing a timed
// transcript, reviewing it chunk by chunk through the reviser LLM, watching a
// text file for hand edits, and browsing revision history. Config resolution,
// logging setup, and the single-writer store lock live in context.go so
// subcommands stay declarative.
package main
