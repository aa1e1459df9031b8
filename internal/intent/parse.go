package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/timeutil"
)

// ErrNoJSON is returned when a response has no {...} span.
var ErrNoJSON = errors.New("no JSON object in response")

var (
	fenceRe         = regexp.MustCompile("```json\n|\n```")
	lineCommentRe   = regexp.MustCompile(`(?m)//.*$`)
	objectRe        = regexp.MustCompile(`(?s)\{.*\}`)
	trailingBraceRe = regexp.MustCompile(`,\s*}`)
	trailingBrackRe = regexp.MustCompile(`,\s*]`)
)

// ParseResponse pulls the JSON object out of a noisy model answer: code fences
// and // comments are removed, the outermost {...} span is taken, newlines are
// collapsed and trailing commas dropped before decoding.
func ParseResponse(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	text = fenceRe.ReplaceAllString(text, "")
	text = lineCommentRe.ReplaceAllString(text, "")

	span := objectRe.FindString(text)
	if span == "" {
		return nil, ErrNoJSON
	}

	span = strings.ReplaceAll(span, "\n", " ")
	span = strings.ReplaceAll(span, "\r", "")
	span = trailingBraceRe.ReplaceAllString(span, "}")
	span = trailingBrackRe.ReplaceAllString(span, "]")

	var fields map[string]any
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode response JSON: %w", err)
	}
	return fields, nil
}

// ContactResolver maps a name to an address.
type ContactResolver interface {
	Resolve(name string) (string, bool)
}

// buildDelta applies field defaults, normalizes time and duration, and keeps
// only recipients the resolver knows.
func buildDelta(fields map[string]any, contacts ContactResolver, now time.Time) *Delta {
	d := &Delta{
		Intent:         Intent(stringField(fields, "intent")),
		Duration:       durationField(fields["duration"]),
		Subject:        stringField(fields, "subject"),
		Content:        stringField(fields, "content"),
		IsRecurring:    boolField(fields, "is_recurring"),
		RecurrenceRule: stringField(fields, "recurrence_rule"),
		GenerateJoke:   boolField(fields, "generate_joke"),
		JokeTopic:      stringField(fields, "joke_topic"),
	}

	if raw := stringField(fields, "time"); raw != "" {
		if t, err := timeutil.ParseTime(raw, now); err == nil {
			d.Time = &t
		}
	}

	for _, name := range recipientsField(fields["recipients"]) {
		if addr, ok := contacts.Resolve(name); ok {
			d.Recipients = append(d.Recipients, addr)
		}
	}

	return d
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func boolField(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// durationField accepts numbers, numeric strings and phrases like "1 hour".
func durationField(v any) int {
	switch d := v.(type) {
	case float64:
		if d > 0 && d < math.MaxInt32 {
			return int(d)
		}
	case string:
		s := strings.TrimSpace(d)
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
		if s != "" {
			return timeutil.ParseDuration(s)
		}
	}
	return timeutil.DefaultMinutes
}

// recipientsField coerces a single string into a one-element list.
func recipientsField(v any) []string {
	switch r := v.(type) {
	case string:
		if strings.TrimSpace(r) == "" {
			return nil
		}
		return []string{r}
	case []any:
		out := make([]string, 0, len(r))
		for _, item := range r {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

var (
	meetingHints = []string{"meeting", "schedule", "set up"}
	emailHints   = []string{"email", "send", "message"}
	helpHints    = []string{"help", "what can you do"}
)

// keywordDelta guesses the intent from the raw message. Every other field
// keeps its default.
func keywordDelta(message string) *Delta {
	normalized := strings.ToLower(message)
	d := &Delta{Duration: timeutil.DefaultMinutes}

	switch {
	case containsAny(normalized, meetingHints):
		d.Intent = ScheduleMeeting
	case containsAny(normalized, emailHints):
		d.Intent = SendEmail
	case containsAny(normalized, helpHints):
		d.Intent = Help
	}
	return d
}

func containsAny(text string, values []string) bool {
	for _, v := range values {
		if strings.Contains(text, v) {
			return true
		}
	}
	return false
}
