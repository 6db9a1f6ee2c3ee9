package logs

import (
	"encoding/json"
	"strings"
)

// Filter selects log lines. Zero fields match everything.
type Filter struct {
	SessionID string
	// Level is the minimum level: debug, info, warn, or error.
	Level     string
	Component string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Match reports whether line passes every set field.
func (f Filter) Match(line string) bool {
	if f.SessionID == "" && f.Level == "" && f.Component == "" {
		return true
	}
	fields, ok := parseLine(line)
	if !ok {
		return false
	}
	if f.SessionID != "" && fields.sessionID != f.SessionID {
		return false
	}
	if f.Component != "" && !strings.EqualFold(fields.component, f.Component) {
		return false
	}
	if f.Level != "" {
		want, known := levelRank[strings.ToLower(f.Level)]
		have, parsed := levelRank[fields.level]
		if known && (!parsed || have < want) {
			return false
		}
	}
	return true
}

type lineFields struct {
	level     string
	component string
	sessionID string
}

// parseLine reads the level, component, and session of a JSON or console line.
func parseLine(line string) (lineFields, bool) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var entry struct {
			Level     string `json:"level"`
			Component string `json:"component"`
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal([]byte(trimmed), &entry); err != nil {
			return lineFields{}, false
		}
		return lineFields{
			level:     strings.ToLower(entry.Level),
			component: entry.Component,
			sessionID: entry.SessionID,
		}, true
	}

	// console: "<ts> LEVEL component: message key=value ..."
	parts := strings.SplitN(trimmed, " ", 3)
	if len(parts) < 3 {
		return lineFields{}, false
	}
	fields := lineFields{level: strings.ToLower(parts[1])}
	rest := parts[2]
	if head, _, found := strings.Cut(rest, ": "); found && !strings.ContainsAny(head, " =") {
		fields.component = head
	}
	for _, token := range strings.Fields(rest) {
		if value, found := strings.CutPrefix(token, "session_id="); found {
			fields.sessionID = strings.Trim(value, `"`)
			break
		}
	}
	return fields, true
}
