package meetings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/gcal"
)

// Calendar creates events on the user's calendar.
type Calendar interface {
	IsAuthenticated() bool
	CreateMeeting(ctx context.Context, input gcal.MeetingInput) (*gcal.CreatedMeeting, error)
}

// Input is a meeting ready to be committed.
type Input struct {
	Subject        string
	Start          time.Time
	Duration       int // minutes
	Participants   []string
	Content        string
	Timezone       string
	IsRecurring    bool
	RecurrenceRule string
	Source         database.MeetingSource
}

// Service commits meetings to the calendar and the local store.
type Service struct {
	db       *database.DB
	calendar Calendar
	timezone string
	logger   *slog.Logger
}

// NewService creates a meeting service. calendar may be nil, in which case
// meetings are only stored locally and carry no Meet or calendar link.
func NewService(db *database.DB, calendar Calendar, timezone string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		calendar: calendar,
		timezone: timezone,
		logger:   logger,
	}
}

// Create adds the meeting to the calendar when one is connected and stores it.
func (s *Service) Create(ctx context.Context, in Input) (*database.Meeting, error) {
	if in.Duration <= 0 {
		return nil, fmt.Errorf("meeting duration must be positive, got %d", in.Duration)
	}
	tz := in.Timezone
	if tz == "" {
		tz = s.timezone
	}

	m := &database.Meeting{
		Subject:      in.Subject,
		StartTime:    in.Start,
		EndTime:      in.Start.Add(time.Duration(in.Duration) * time.Minute),
		Participants: in.Participants,
		Content:      in.Content,
		Timezone:     tz,
		IsRecurring:  in.IsRecurring,
		Source:       in.Source,
	}
	if in.IsRecurring {
		m.RecurrenceRule = in.RecurrenceRule
	}

	if s.calendar != nil && s.calendar.IsAuthenticated() {
		created, err := s.calendar.CreateMeeting(ctx, gcal.MeetingInput{
			Summary:        m.Subject,
			Description:    m.Content,
			StartTime:      m.StartTime,
			EndTime:        m.EndTime,
			Timezone:       tz,
			Attendees:      m.Participants,
			RecurrenceRule: m.RecurrenceRule,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create calendar event: %w", err)
		}
		m.GoogleEventID = created.EventID
		m.MeetLink = created.MeetLink
		m.CalendarLink = created.CalendarLink
	} else {
		s.logger.Warn("calendar not connected, storing meeting without event", "subject", m.Subject)
	}

	stored, err := s.db.CreateMeeting(m)
	if err != nil {
		return nil, err
	}

	s.logger.Info("meeting created",
		"id", stored.ID,
		"subject", stored.Subject,
		"start", stored.StartTime.Format(time.RFC3339),
		"participants", len(stored.Participants),
		"source", stored.Source,
	)
	return stored, nil
}

// Get returns a committed meeting by id.
func (s *Service) Get(id int64) (*database.Meeting, error) {
	return s.db.GetMeeting(id)
}

// List returns all committed meetings, oldest first.
func (s *Service) List() ([]database.Meeting, error) {
	return s.db.ListMeetings()
}

// GetContext returns, as JSON, those of the last historyLength meetings whose
// subject contains topic (case-insensitive) or that share a participant.
func (s *Service) GetContext(ctx context.Context, topic string, participants []string, historyLength int) (string, error) {
	if historyLength <= 0 {
		return "[]", nil
	}

	recent, err := s.db.ListRecentMeetings(historyLength)
	if err != nil {
		return "", err
	}

	topic = strings.ToLower(topic)
	relevant := make([]database.Meeting, 0, len(recent))
	for _, m := range recent {
		if strings.Contains(strings.ToLower(m.Subject), topic) || sharesParticipant(m.Participants, participants) {
			relevant = append(relevant, m)
		}
	}

	data, err := json.Marshal(relevant)
	if err != nil {
		return "", fmt.Errorf("failed to encode meeting context: %w", err)
	}
	return string(data), nil
}

func sharesParticipant(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}
