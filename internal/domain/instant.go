package domain

import (
	"fmt"
	"strings"
	"time"
)

// InstantLayout is the storage form of attempt timestamps. It is fixed width
// so that text ordering matches chronological ordering.
const InstantLayout = "2006-01-02T15:04:05.000Z"

// naive layouts are interpreted as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// FormatInstant renders t in InstantLayout (UTC, millisecond precision).
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

// ParseInstant parses a stored attempt timestamp. It accepts RFC 3339 with a
// zone or offset and zone-less ISO forms, which are taken to be UTC. The
// result is always in UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// InstantFromMillis converts a Unix millisecond timestamp to a UTC time.
func InstantFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
