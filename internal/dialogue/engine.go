package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/dispatch"
	"github.com/omriShneor/meeting_assistant/internal/intent"
	"github.com/omriShneor/meeting_assistant/internal/proposal"
)

// ErrEmptyMessage is returned for blank chat messages.
var ErrEmptyMessage = errors.New("message is required")

const unavailableText = "I'm sorry, I couldn't understand your request. Could you please rephrase it?"

// Extractor interprets one chat message.
type Extractor interface {
	Extract(ctx context.Context, message string, history []intent.Turn, meetingContext string) (*intent.Delta, intent.Outcome)
}

// Dispatcher carries out completed requests.
type Dispatcher interface {
	ScheduleMeeting(ctx context.Context, req dispatch.MeetingRequest) (*dispatch.Result, error)
	SendEmail(ctx context.Context, req dispatch.EmailRequest) (*dispatch.Result, error)
}

// EmailIntake accepts a meeting-request email pasted into the chat.
type EmailIntake interface {
	Submit(ctx context.Context, raw string) (*proposal.Submission, error)
}

// Reply is the engine's answer to one chat turn.
type Reply struct {
	Text     string           `json:"response"`
	ShowForm bool             `json:"show_form"`
	Outcome  intent.Outcome   `json:"-"`
	Action   Action           `json:"-"`
	Result   *dispatch.Result `json:"-"`
}

// Config tunes an Engine.
type Config struct {
	// HistoryWindow caps how many past turns go into the prompt; 0 means all.
	HistoryWindow int
}

// Engine runs chat turns against the session store.
type Engine struct {
	store      *Store
	extractor  Extractor
	dispatcher Dispatcher
	context    dispatch.ContextProvider
	intake     EmailIntake
	policy     Policy
	window     int
	logger     *slog.Logger
}

// NewEngine creates an Engine. contextProvider and intake may be nil.
func NewEngine(store *Store, extractor Extractor, dispatcher Dispatcher, contextProvider dispatch.ContextProvider, intake EmailIntake, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:      store,
		extractor:  extractor,
		dispatcher: dispatcher,
		context:    contextProvider,
		intake:     intake,
		policy:     Policy{},
		window:     cfg.HistoryWindow,
		logger:     logger,
	}
}

// Store returns the session store.
func (e *Engine) Store() *Store {
	return e.store
}

// HandleTurn processes one user message for sessionID. Turns for the same
// session run one at a time; different sessions proceed in parallel. Action
// failures are reported in the reply, never as an error.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	s, release := e.store.Acquire(sessionID)
	defer release()

	if e.intake != nil && looksLikeMeetingEmail(message) {
		return e.submitEmail(ctx, s, message), nil
	}

	prior := s.recentHistory(e.window)
	s.appendTurn(intent.RoleUser, message)

	delta, outcome := e.extractor.Extract(ctx, message, prior, e.meetingContext(ctx, s))
	logger := e.logger.With("session_id", sessionID, "outcome", outcome.String())
	if outcome == intent.OutcomeUnavailable {
		logger.Warn("generation service unavailable")
		return Reply{Text: unavailableText, Outcome: outcome}, nil
	}

	s.Merge(delta)
	decision := e.policy.Decide(s)
	logger.Debug("turn decided",
		"intent", s.Intent,
		"action", decision.Action.String(),
		"last_question", s.LastQuestion,
	)

	reply := Reply{Outcome: outcome, Action: decision.Action, ShowForm: decision.ShowForm}
	switch decision.Action {
	case ActionScheduleMeeting:
		reply.Text, reply.Result = e.schedule(ctx, s, logger)
	case ActionSendEmail:
		reply.Text, reply.Result = e.sendEmail(ctx, s, logger)
	default:
		reply.Text = decision.Text
		s.appendTurn(intent.RoleAssistant, reply.Text)
	}
	return reply, nil
}

func (e *Engine) schedule(ctx context.Context, s *Session, logger *slog.Logger) (string, *dispatch.Result) {
	subject := s.Slots.Subject
	if subject == "" {
		subject = defaultMeetingSubject
	}
	duration := s.Slots.Duration

	result, err := e.dispatcher.ScheduleMeeting(ctx, dispatch.MeetingRequest{
		Subject:        subject,
		Start:          *s.Slots.Time,
		Duration:       duration,
		Participants:   s.Slots.Recipients,
		IsRecurring:    s.Slots.IsRecurring,
		RecurrenceRule: s.Slots.RecurrenceRule,
		Source:         database.SourceChat,
	})
	if err != nil {
		logger.Error("failed to schedule meeting", "error", err)
		text := fmt.Sprintf("Sorry, there was an error scheduling the meeting: %v", err)
		s.appendTurn(intent.RoleAssistant, text)
		return text, result
	}

	text := fmt.Sprintf("Great! I've scheduled a %d minute meeting for %s with %s.",
		duration, s.Slots.Time.Format("03:04 PM"), strings.Join(result.Valid, ", "))
	if result.Notified {
		text += " I've sent the calendar invites with Google Meet link."
	} else {
		text += " I couldn't send the confirmation emails, though."
	}
	text += invalidNote(result.Invalid)

	logger.Info("meeting scheduled from chat", "meeting_id", result.Meeting.ID)
	s.Reset()
	return text, result
}

func (e *Engine) sendEmail(ctx context.Context, s *Session, logger *slog.Logger) (string, *dispatch.Result) {
	subject := s.Slots.Subject
	if subject == "" {
		subject = defaultEmailSubject
	}

	result, err := e.dispatcher.SendEmail(ctx, dispatch.EmailRequest{
		Recipients:   s.Slots.Recipients,
		Subject:      subject,
		Content:      s.Slots.Content,
		GenerateJoke: s.GenerateJoke,
		JokeTopic:    s.JokeTopic,
	})
	if err != nil {
		logger.Error("failed to send email", "error", err)
		text := fmt.Sprintf("Sorry, there was an error sending the email: %v", err)
		s.appendTurn(intent.RoleAssistant, text)
		return text, result
	}

	text := fmt.Sprintf("I've sent the email to %s.", strings.Join(result.Valid, ", ")) + invalidNote(result.Invalid)
	s.Reset()
	return text, result
}

func (e *Engine) submitEmail(ctx context.Context, s *Session, raw string) Reply {
	s.appendTurn(intent.RoleUser, raw)

	var text string
	sub, err := e.intake.Submit(ctx, raw)
	switch {
	case err != nil:
		text = fmt.Sprintf("Sorry, I couldn't process your meeting request: %v", err)
	case sub.Notified:
		text = "I've processed your meeting request and sent confirmation emails to all participants. They'll need to confirm the meeting before it's scheduled."
	default:
		text = fmt.Sprintf("I've recorded your meeting request, but couldn't email the participants. It can be confirmed at %s", sub.Link)
	}

	s.appendTurn(intent.RoleAssistant, text)
	return Reply{Text: text}
}

func (e *Engine) meetingContext(ctx context.Context, s *Session) string {
	if e.context == nil {
		return ""
	}
	c, err := e.context.GetContext(ctx, s.Slots.Subject, s.Slots.Recipients, e.window)
	if err != nil {
		e.logger.Warn("failed to load meeting context", "session_id", s.ID, "error", err)
		return ""
	}
	if c == "[]" {
		return ""
	}
	return c
}

var subjectLineRe = regexp.MustCompile(`(?im)^subject:[ \t]*\S`)

// looksLikeMeetingEmail matches pasted emails that ask for a meeting. A
// Subject header line is required so that ordinary requests naming an
// address still go through the dialogue.
func looksLikeMeetingEmail(message string) bool {
	if !strings.Contains(message, "@") || !subjectLineRe.MatchString(message) {
		return false
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "meeting") || strings.Contains(lower, "schedule")
}

func invalidNote(invalid []dispatch.InvalidRecipient) string {
	if len(invalid) == 0 {
		return ""
	}
	addrs := make([]string, len(invalid))
	for i, r := range invalid {
		addrs[i] = r.Address
	}
	return fmt.Sprintf(" Skipped invalid addresses: %s.", strings.Join(addrs, ", "))
}
