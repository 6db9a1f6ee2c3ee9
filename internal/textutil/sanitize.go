package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName turns a transcript name into a file name. Path separators,
// colons, and asterisks become dashes, other reserved characters and control
// characters are dropped, and whitespace runs become one underscore.
func SanitizeFileName(name string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r):
			gap = true
			continue
		case strings.ContainsRune(`/\:*`, r):
			r = '-'
		case strings.ContainsRune(`?"<>|`, r), unicode.IsControl(r):
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte('_')
		}
		gap = false
		b.WriteRune(r)
	}
	return b.String()
}
