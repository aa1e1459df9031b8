// Package intent turns a chat message into a partial slot update using the
// generation service, with a keyword fallback when its answer is unusable.
package intent

import "time"

// Intent is what the user wants the assistant to do.
type Intent string

const (
	None            Intent = ""
	ScheduleMeeting Intent = "schedule_meeting"
	SendEmail       Intent = "send_email"
	Help            Intent = "help"
	Unclear         Intent = "unclear"
)

// Role identifies the speaker of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one line of conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"content"`
}

// Delta is a partial slot update produced from one message. Zero values mean
// "absent": merging a Delta only overwrites fields that are set.
type Delta struct {
	Intent         Intent
	Time           *time.Time
	Duration       int
	Recipients     []string
	Subject        string
	Content        string
	IsRecurring    bool
	RecurrenceRule string
	GenerateJoke   bool
	JokeTopic      string
}

// Outcome tells callers how a Delta was obtained.
type Outcome int

const (
	// OutcomeParsed means the service answer was decoded.
	OutcomeParsed Outcome = iota
	// OutcomeFallback means the answer was unusable and keyword detection ran instead.
	OutcomeFallback
	// OutcomeUnavailable means the service call failed; no Delta is returned.
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeParsed:
		return "parsed"
	case OutcomeFallback:
		return "fallback"
	case OutcomeUnavailable:
		return "unavailable"
	}
	return "unknown"
}
