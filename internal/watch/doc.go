// Package watch follows a transcript text file while an operator edits it and
// saves each settled change as a new revision.
//
// Watcher prefers fsnotify on the file's directory so editors that save by
// rename are still seen, and falls back to polling when notifications are
// unavailable. Bursts of events are debounced and unchanged content is skipped
// by hash, so one save produces at most one revision.
package watch
