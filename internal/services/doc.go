// Package services defines shared utilities consumed by the review engine and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp review session IDs, transcript IDs, chunk
//     positions, and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the CLI map
//     failures to exit codes and operator hints.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform across commands.
package services
