// Package notifications sends review milestones to ntfy.
//
// A review of a long recording spends minutes waiting on the reviser, so the
// CLI posts when changes are ready for a decision, when a revision is saved,
// and when a review fails. NewService returns a no-op Service when no topic is
// configured, so callers never check the config themselves.
package notifications
