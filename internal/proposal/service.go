package proposal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/dispatch"
	"github.com/omriShneor/meeting_assistant/internal/notify"
)

// Dispatcher carries out the side effects of the workflow.
type Dispatcher interface {
	ScheduleMeeting(ctx context.Context, req dispatch.MeetingRequest) (*dispatch.Result, error)
	RequestConfirmation(ctx context.Context, details notify.RequestDetails) (*dispatch.Result, error)
}

// Submission is the outcome of ingesting one email.
type Submission struct {
	Proposal *Proposal
	Link     string
	// Notified is false when the confirmation request email could not be sent.
	// The proposal stays pending and can still be confirmed through Link.
	Notified bool
}

// Service connects the pending table to mail and meeting creation.
type Service struct {
	workflow   *Workflow
	dispatcher Dispatcher
	baseURL    string
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the workflow to the dispatcher. Proposed times resolve
// against the wall clock in loc; a nil loc means the local zone.
func NewService(workflow *Workflow, dispatcher Dispatcher, baseURL string, loc *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		workflow:   workflow,
		dispatcher: dispatcher,
		baseURL:    baseURL,
		logger:     logger,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

// Workflow exposes the pending table.
func (s *Service) Workflow() *Workflow {
	return s.workflow
}

// Submit ingests a raw email and asks its participants to confirm.
func (s *Service) Submit(ctx context.Context, raw string) (*Submission, error) {
	p, err := s.workflow.Ingest(raw)
	if err != nil {
		return nil, err
	}

	sub := &Submission{Proposal: p, Link: Locator(s.baseURL, p.ID)}
	s.logger.Info("meeting request pending confirmation",
		"id", p.ID,
		"subject", p.Subject,
		"proposed_time", p.ProposedTime,
		"participants", len(p.Participants),
	)

	_, err = s.dispatcher.RequestConfirmation(ctx, notify.RequestDetails{
		Subject:      p.Subject,
		Start:        ResolveStart(p.ProposedTime, s.now()),
		Duration:     p.Duration,
		Participants: p.Participants,
		ContentHTML:  p.Content,
		Link:         sub.Link,
	})
	if err != nil {
		s.logger.Warn("failed to send confirmation request", "id", p.ID, "error", err)
		return sub, nil
	}
	sub.Notified = true
	return sub, nil
}

// Confirm commits a pending proposal as a meeting. If the meeting cannot be
// created the proposal is put back so the link keeps working.
func (s *Service) Confirm(ctx context.Context, id int64) (*database.Meeting, error) {
	p, start, err := s.workflow.Confirm(id, s.now())
	if err != nil {
		return nil, err
	}

	result, err := s.dispatcher.ScheduleMeeting(ctx, dispatch.MeetingRequest{
		Subject:      p.Subject,
		Start:        start,
		Duration:     p.Duration,
		Participants: p.Participants,
		Description:  p.Content,
		Source:       database.SourceEmail,
	})
	if err != nil {
		s.workflow.Restore(p)
		return nil, fmt.Errorf("failed to create confirmed meeting: %w", err)
	}

	s.logger.Info("meeting request confirmed", "id", id, "meeting_id", result.Meeting.ID)
	return result.Meeting, nil
}

// Reject drops a pending proposal.
func (s *Service) Reject(id int64) error {
	if _, err := s.workflow.Reject(id); err != nil {
		return err
	}
	s.logger.Info("meeting request rejected", "id", id)
	return nil
}
