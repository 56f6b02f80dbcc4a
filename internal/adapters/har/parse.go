package har

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoEntries is returned when a document has no entries array at all.
// It gates the trim operation; analysis treats an empty trace as valid.
var ErrNoEntries = errors.New("har: document has no entries array")

// Parse decodes a HAR document. It is strict only about JSON
// well-formedness; malformed individual fields are left for the
// normalizer to degrade safely.
func Parse(data []byte) (*HAR, error) {
	var doc HAR
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("har: parse: %w", err)
	}
	return &doc, nil
}

// startedDateTime layouts seen in the wild: RFC 3339 with or without
// fractional seconds, and zone-less ISO variants from older tooling.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTime parses a startedDateTime string, reporting ok=false when no
// accepted layout matches (including the empty string).
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
