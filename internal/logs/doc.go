// Package logs reads back the verbatim log file.
//
// Tail returns the last lines of the file and the byte offset after them;
// Follow keeps reading from an offset until the context ends. A Filter narrows
// output to one review session, level, or component and understands both the
// console and JSON line formats written by the logging package.
package logs
