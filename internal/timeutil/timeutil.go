package timeutil

import (
	"fmt"
	"strings"
	"time"
)

var defaultLocation = time.UTC

// ResolveLocation returns the configured location with UTC fallback.
func ResolveLocation(timezone string) (*time.Location, bool) {
	if timezone == "" {
		return defaultLocation, true
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return defaultLocation, true
	}
	return loc, false
}

// localLayouts are tried after RFC3339. The scheduling form submits
// "2006-01-02 15:04". Chat clock phrases go through ParseTime instead.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime parses a datetime in RFC3339 (keeping its offset) or in one
// of the local layouts in timezone. The bool reports a UTC fallback for an
// unknown timezone.
func ParseDateTime(value, timezone string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, fmt.Errorf("time value is required")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}

	loc, fallback := ResolveLocation(timezone)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, fallback, nil
		}
	}

	return time.Time{}, fallback, fmt.Errorf("unable to parse time: %s", value)
}
