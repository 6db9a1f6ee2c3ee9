// Package logging builds the slog loggers used by every verbatim command.
//
// Two formats exist: a console line format with the component as a prefix,
// and JSON with ts, level, and msg keys. WithContext copies the session,
// transcript, and chunk identifiers stored by the services package onto a
// logger, which is what lets "verbatim logs --session" find one review run.
package logging
