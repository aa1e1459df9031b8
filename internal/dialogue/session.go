// Package dialogue keeps per-session conversation state and decides, turn by
// turn, whether to ask for a missing detail or carry out the request.
package dialogue

import (
	"sync"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/intent"
	"github.com/omriShneor/meeting_assistant/internal/timeutil"
)

// Question is the slot the assistant asked about most recently.
type Question string

const (
	QuestionNone       Question = ""
	QuestionTime       Question = "time"
	QuestionRecipients Question = "recipients"
	QuestionSubject    Question = "subject"
	QuestionContent    Question = "content"
	QuestionIntent     Question = "intent"
)

// Slots are the details gathered so far for the current request.
type Slots struct {
	Time           *time.Time `json:"time,omitempty"`
	Duration       int        `json:"duration"`
	Recipients     []string   `json:"recipients"`
	Subject        string     `json:"subject"`
	Content        string     `json:"content"`
	IsRecurring    bool       `json:"is_recurring"`
	RecurrenceRule string     `json:"recurrence_rule"`
}

// State is the conversation state for one session id.
type State struct {
	ID           string        `json:"session_id"`
	Intent       intent.Intent `json:"intent"`
	Slots        Slots         `json:"slots"`
	GenerateJoke bool          `json:"generate_joke"`
	JokeTopic    string        `json:"joke_topic"`
	LastQuestion Question      `json:"last_question"`
	SubjectAsked bool          `json:"subject_asked"`
	History      []intent.Turn `json:"history"`
}

// Session guards a State for the length of a turn.
type Session struct {
	mu sync.Mutex
	State
}

func newSession(id string) *Session {
	s := &Session{}
	s.State.ID = id
	s.Reset()
	return s
}

// Reset returns the session to its initial state, keeping only the id.
func (s *Session) Reset() {
	s.State = State{
		ID:    s.ID,
		Slots: Slots{Duration: timeutil.DefaultMinutes},
	}
}

// Merge applies the fields present in d. Absent fields leave the session untouched.
func (s *Session) Merge(d *intent.Delta) {
	if d == nil {
		return
	}
	if d.Intent != intent.None {
		s.Intent = d.Intent
	}
	if d.Time != nil {
		t := *d.Time
		s.Slots.Time = &t
	}
	if d.Duration > 0 {
		s.Slots.Duration = d.Duration
	}
	if len(d.Recipients) > 0 {
		s.Slots.Recipients = append([]string(nil), d.Recipients...)
	}
	if d.Subject != "" {
		s.Slots.Subject = d.Subject
	}
	if d.Content != "" {
		s.Slots.Content = d.Content
	}
	if d.IsRecurring {
		s.Slots.IsRecurring = true
	}
	if d.RecurrenceRule != "" {
		s.Slots.RecurrenceRule = d.RecurrenceRule
	}
	if d.GenerateJoke {
		s.GenerateJoke = true
	}
	if d.JokeTopic != "" {
		s.JokeTopic = d.JokeTopic
	}
}

func (s *Session) appendTurn(role intent.Role, text string) {
	s.History = append(s.History, intent.Turn{Role: role, Text: text})
}

// recentHistory returns a copy of at most the last n turns; n <= 0 means all.
func (s *Session) recentHistory(n int) []intent.Turn {
	h := s.History
	if n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	return append([]intent.Turn(nil), h...)
}

// snapshot returns a deep copy of the state.
func (s *Session) snapshot() State {
	c := State{
		ID:           s.ID,
		Intent:       s.Intent,
		Slots:        s.Slots,
		GenerateJoke: s.GenerateJoke,
		JokeTopic:    s.JokeTopic,
		LastQuestion: s.LastQuestion,
		SubjectAsked: s.SubjectAsked,
		History:      append([]intent.Turn(nil), s.History...),
	}
	c.Slots.Recipients = append([]string(nil), s.Slots.Recipients...)
	if s.Slots.Time != nil {
		t := *s.Slots.Time
		c.Slots.Time = &t
	}
	return c
}
