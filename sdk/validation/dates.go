package validation

import (
	"fmt"
	"time"
)

// ParseTime accepts RFC3339 timestamps, with or without fractional seconds,
// and plain dates which are read as midnight UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time: %q", s)
}

// ParseTimePtr is ParseTime for optional parameters: an empty string yields
// nil.
func ParseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
