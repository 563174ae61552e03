package schedule

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeISO repairs the two mutations ISO-8601 instants pick up in
// transit: a trailing "Z" becomes an explicit "+00:00" offset, and a "+"
// that URL decoding flattened into a space is restored.
func NormalizeISO(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "+")
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	return s
}

// ParseISO parses an ISO-8601 instant, tolerating a trailing Z suffix.
// The result is converted to UTC.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, NormalizeISO(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: %w", s, err)
	}
	return t.UTC(), nil
}
