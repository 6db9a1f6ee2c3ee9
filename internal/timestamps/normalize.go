// Package timestamps rewrites inline timing tokens emitted by the reviser into
// the canonical H:MM:SS.d form, each on its own line.
package timestamps

import (
	"regexp"
	"strconv"
	"strings"
)

var tokenPattern = regexp.MustCompile(`(\d{1,2}):(\d{1,2}):(\d{1,2})(?:\.(\d+))?`)

// Normalize places every recognized timestamp at the start of its own line and
// reformats it to H:MM:SS.d with the hour unpadded, minute and second padded to
// two digits, and the fraction truncated to one digit. A token preceded by a
// digit, colon, or period, or followed by a digit or colon, is not a timestamp
// and passes through unchanged along with all other text.
func Normalize(raw string) string {
	matches := tokenPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw) + len(matches)*2)
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if !standalone(raw, start, end) {
			continue
		}
		b.WriteString(raw[last:start])
		if start > 0 && raw[start-1] != '\n' {
			b.WriteByte('\n')
		}
		b.WriteString(Format(raw[m[2]:m[3]], raw[m[4]:m[5]], raw[m[6]:m[7]], group(raw, m, 4)))
		last = end
	}
	b.WriteString(raw[last:])
	return b.String()
}

// Format renders timestamp parts in canonical form. Parts must be decimal digits.
func Format(hour, minute, second, fraction string) string {
	h, err := strconv.Atoi(hour)
	if err != nil {
		h = 0
	}
	digit := "0"
	if fraction != "" {
		digit = fraction[:1]
	}
	return strconv.Itoa(h) + ":" + pad2(minute) + ":" + pad2(second) + "." + digit
}

// IsCanonical reports whether s is exactly one timestamp in H:MM:SS.d form.
func IsCanonical(s string) bool {
	return canonicalPattern.MatchString(s)
}

var canonicalPattern = regexp.MustCompile(`^(?:0|[1-9]\d?):\d{2}:\d{2}\.\d$`)

func standalone(raw string, start, end int) bool {
	if start > 0 {
		switch prev := raw[start-1]; {
		case isDigit(prev), prev == ':', prev == '.':
			return false
		}
	}
	if end < len(raw) {
		switch next := raw[end]; {
		case isDigit(next), next == ':':
			return false
		}
	}
	return true
}

func group(raw string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return raw[m[2*n]:m[2*n+1]]
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
