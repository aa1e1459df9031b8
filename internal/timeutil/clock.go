package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultMinutes     = 30
	defaultHourMinutes = 60
)

var (
	// ErrNoMeridiem is returned for clock expressions without AM/PM.
	// 24-hour times like "14:00" are not supported.
	ErrNoMeridiem = errors.New("time has no AM/PM marker")

	// ErrUnrecognizedTime is returned when none of the 12-hour layouts match.
	ErrUnrecognizedTime = errors.New("unrecognized time expression")
)

// Tried in order, first match wins.
var clockLayouts = []string{
	"3:04 PM",
	"3 PM",
}

var (
	compactClockRe  = regexp.MustCompile(`^(\d{1,2})(\d{2}) (AM|PM)$`)
	gluedMeridiemRe = regexp.MustCompile(`(\d)(AM|PM)`)
	digitsRe        = regexp.MustCompile(`\d+`)
)

// ParseTime turns "2:00 PM tomorrow", "today 10 AM" or "230 PM" into an
// absolute time on now's calendar and in now's location.
func ParseTime(text string, now time.Time) (time.Time, error) {
	lower := strings.ToLower(text)
	day := now
	clock := text

	switch {
	case strings.Contains(lower, "tomorrow"):
		day = now.AddDate(0, 0, 1)
		clock = strings.ReplaceAll(lower, "tomorrow", "")
	case strings.Contains(lower, "today"):
		clock = strings.ReplaceAll(lower, "today", "")
	}

	clock = strings.ToUpper(strings.Join(strings.Fields(clock), " "))
	if !strings.Contains(clock, "AM") && !strings.Contains(clock, "PM") {
		return time.Time{}, fmt.Errorf("%w: %q", ErrNoMeridiem, text)
	}
	clock = gluedMeridiemRe.ReplaceAllString(clock, "$1 $2")

	t, err := parseClock(clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", err, text)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

func parseClock(clock string) (time.Time, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, clock); err == nil {
			return t, nil
		}
	}

	// Hour and minute without a separator ("230 PM", "1045 AM").
	if m := compactClockRe.FindStringSubmatch(clock); m != nil {
		if t, err := time.Parse("3:04 PM", m[1]+":"+m[2]+" "+m[3]); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrUnrecognizedTime
}

// ParseDuration returns a meeting length in minutes. A minute marker is
// checked before an hour marker; the first run of digits is the magnitude.
// Without digits the minute branch falls back to 30 and the hour branch to 60.
// Text with neither marker yields 30.
func ParseDuration(text string) int {
	s := strings.ToLower(text)

	switch {
	case strings.Contains(s, "m"):
		if n, ok := leadingNumber(s); ok {
			return n
		}
		return DefaultMinutes
	case strings.Contains(s, "h"):
		if n, ok := leadingNumber(s); ok {
			return n * 60
		}
		return defaultHourMinutes
	}

	return DefaultMinutes
}

func leadingNumber(s string) (int, bool) {
	match := digitsRe.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
