// Package dispatch carries out the actions the dialogue and the email
// workflow decide on: creating meetings and sending mail.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/llm"
	"github.com/omriShneor/meeting_assistant/internal/meetings"
	"github.com/omriShneor/meeting_assistant/internal/notify"
)

// MeetingCreator commits a meeting.
type MeetingCreator interface {
	Create(ctx context.Context, in meetings.Input) (*database.Meeting, error)
}

// ContextProvider returns past meetings relevant to a topic as opaque text.
type ContextProvider interface {
	GetContext(ctx context.Context, topic string, participants []string, historyLength int) (string, error)
}

// MeetingRequest is a meeting the user asked for.
type MeetingRequest struct {
	Subject        string
	Start          time.Time
	Duration       int
	Participants   []string
	Description    string // generated when empty
	IsRecurring    bool
	RecurrenceRule string
	Source         database.MeetingSource
}

// EmailRequest is a free-form email the user asked for.
type EmailRequest struct {
	Recipients   []string
	Subject      string
	Content      string
	GenerateJoke bool
	JokeTopic    string
}

// Result reports what an action did.
type Result struct {
	Valid   []string
	Invalid []InvalidRecipient
	Meeting *database.Meeting
	// Notified is false when the meeting was created but its email could not be sent.
	Notified bool
}

// Dispatcher executes actions against the meeting store, the mailer and the
// generation service.
type Dispatcher struct {
	meetings        MeetingCreator
	contextProvider ContextProvider
	mailer          notify.Mailer
	generator       llm.Generator
	historyLength   int
	logger          *slog.Logger
}

// Deps groups the collaborators of a Dispatcher. Only Meetings is required.
type Deps struct {
	Meetings        MeetingCreator
	ContextProvider ContextProvider
	Mailer          notify.Mailer
	Generator       llm.Generator
	HistoryLength   int
	Logger          *slog.Logger
}

// New creates a Dispatcher.
func New(deps Deps) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		meetings:        deps.Meetings,
		contextProvider: deps.ContextProvider,
		mailer:          deps.Mailer,
		generator:       deps.Generator,
		historyLength:   deps.HistoryLength,
		logger:          logger,
	}
}

// ScheduleMeeting creates the meeting with the valid participants and emails
// them. Meetings from confirmed email proposals get the "confirmed" notice,
// all others the scheduling confirmation. A mail failure after the meeting
// exists is logged, not returned.
func (d *Dispatcher) ScheduleMeeting(ctx context.Context, req MeetingRequest) (*Result, error) {
	valid, invalid := ValidateRecipients(req.Participants)
	d.warnInvalid(invalid)
	if len(valid) == 0 {
		return &Result{Invalid: invalid}, ErrNoValidRecipients
	}

	description := req.Description
	if description == "" {
		description = d.GenerateAgenda(ctx, req.Subject, valid)
	}

	m, err := d.meetings.Create(ctx, meetings.Input{
		Subject:        req.Subject,
		Start:          req.Start,
		Duration:       req.Duration,
		Participants:   valid,
		Content:        description,
		IsRecurring:    req.IsRecurring,
		RecurrenceRule: req.RecurrenceRule,
		Source:         req.Source,
	})
	if err != nil {
		return &Result{Valid: valid, Invalid: invalid}, err
	}

	result := &Result{Valid: valid, Invalid: invalid, Meeting: m}

	build := notify.MeetingConfirmation
	if req.Source == database.SourceEmail {
		build = notify.MeetingConfirmed
	}
	msg, err := build(m)
	if err == nil {
		err = d.send(ctx, msg)
	}
	if err != nil {
		d.logger.Warn("meeting created but confirmation email failed", "meeting_id", m.ID, "error", err)
	} else {
		result.Notified = true
	}
	return result, nil
}

// SendEmail delivers a free-form email to the valid recipients, optionally
// prefixed with a generated joke.
func (d *Dispatcher) SendEmail(ctx context.Context, req EmailRequest) (*Result, error) {
	valid, invalid := ValidateRecipients(req.Recipients)
	d.warnInvalid(invalid)
	if len(valid) == 0 {
		return &Result{Invalid: invalid}, ErrNoValidRecipients
	}

	content := req.Content
	if req.GenerateJoke {
		topic := req.JokeTopic
		if topic == "" {
			topic = defaultTopic
		}
		content = fmt.Sprintf("Here's a joke about %s:\n\n%s\n\n%s", topic, d.GenerateJoke(ctx, topic), content)
	}

	if err := d.send(ctx, notify.PlainEmail(valid, req.Subject, content)); err != nil {
		return &Result{Valid: valid, Invalid: invalid}, err
	}

	d.logger.Info("email sent", "recipients", len(valid), "subject", req.Subject, "joke", req.GenerateJoke)
	return &Result{Valid: valid, Invalid: invalid, Notified: true}, nil
}

// RequestConfirmation emails a pending proposal to its valid participants
// with confirm and reject links and a QR code for the link.
func (d *Dispatcher) RequestConfirmation(ctx context.Context, details notify.RequestDetails) (*Result, error) {
	valid, invalid := ValidateRecipients(details.Participants)
	d.warnInvalid(invalid)
	if len(valid) == 0 {
		return &Result{Invalid: invalid}, ErrNoValidRecipients
	}
	details.Participants = valid

	var qr *notify.Attachment
	if a, err := notify.ConfirmationQR(details.Link); err != nil {
		d.logger.Warn("failed to render confirmation QR code", "error", err)
	} else {
		qr = &a
	}

	msg, err := notify.MeetingRequest(details, qr)
	if err != nil {
		return nil, err
	}
	if err := d.send(ctx, msg); err != nil {
		return &Result{Valid: valid, Invalid: invalid}, fmt.Errorf("failed to send confirmation emails: %w", err)
	}
	return &Result{Valid: valid, Invalid: invalid, Notified: true}, nil
}

func (d *Dispatcher) send(ctx context.Context, msg *notify.Message) error {
	if d.mailer == nil {
		return notify.ErrNotConfigured
	}
	return d.mailer.Send(ctx, msg)
}

func (d *Dispatcher) warnInvalid(invalid []InvalidRecipient) {
	for _, r := range invalid {
		d.logger.Warn("skipping invalid recipient", "address", r.Address, "reason", r.Reason)
	}
}
