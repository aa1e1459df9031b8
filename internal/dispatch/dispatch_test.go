package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/meetings"
	"github.com/omriShneor/meeting_assistant/internal/mocks"
	"github.com/omriShneor/meeting_assistant/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

type fixture struct {
	db         *database.DB
	dispatcher *Dispatcher
	service    *meetings.Service
	mailer     *mocks.MockMailer
	generator  *mocks.MockGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.NewTestDB(t)
	svc := meetings.NewService(db, nil, "UTC", nil)
	mailer := &mocks.MockMailer{}
	gen := &mocks.MockGenerator{}
	return &fixture{
		db:         db,
		dispatcher: New(Deps{
			Meetings:        svc,
			ContextProvider: svc,
			Mailer:          mailer,
			Generator:       gen,
			HistoryLength:   10,
		}),
		service:   svc,
		mailer:    mailer,
		generator: gen,
	}
}

func TestValidateRecipients(t *testing.T) {
	valid, invalid := ValidateRecipients([]string{"a@example.com", "not-an-email"})
	assert.Equal(t, []string{"a@example.com"}, valid)
	require.Len(t, invalid, 1)
	assert.Equal(t, "not-an-email", invalid[0].Address)
	assert.Contains(t, invalid[0].Reason, "invalid email format")

	valid, invalid = ValidateRecipients([]string{"first.last+tag@sub.domain.io", "", "x@y"})
	assert.Equal(t, []string{"first.last+tag@sub.domain.io"}, valid)
	require.Len(t, invalid, 2)
	assert.Equal(t, "email address is empty", invalid[0].Reason)
}

func TestValidateRecipients_AcceptsExampleDomain(t *testing.T) {
	valid, invalid := ValidateRecipients([]string{"someone@example.com", "team.lead@example.com"})
	assert.Equal(t, []string{"someone@example.com", "team.lead@example.com"}, valid)
	assert.Empty(t, invalid)
}

func TestSendEmail_PartitionsAndSucceeds(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *notify.Message) bool {
		return assert.ObjectsAreEqual([]string{"a@example.com"}, m.To) && m.Subject == "Hello" && m.Text == "Body"
	})).Return(nil)

	result, err := f.dispatcher.SendEmail(context.Background(), EmailRequest{
		Recipients: []string{"a@example.com", "not-an-email"},
		Subject:    "Hello",
		Content:    "Body",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, result.Valid)
	require.Len(t, result.Invalid, 1)
	assert.Equal(t, "not-an-email", result.Invalid[0].Address)
	assert.True(t, result.Notified)
	f.mailer.AssertExpectations(t)
}

func TestSendEmail_NoValidRecipients(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatcher.SendEmail(context.Background(), EmailRequest{
		Recipients: []string{"bob"},
		Content:    "Body",
	})
	assert.ErrorIs(t, err, ErrNoValidRecipients)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendEmail_WithJoke(t *testing.T) {
	f := newFixture(t)
	f.generator.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "joke about cats")
	})).Return("  Cats are purr-fect.  ", nil)

	var sent *notify.Message
	f.mailer.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*notify.Message)
	}).Return(nil)

	_, err := f.dispatcher.SendEmail(context.Background(), EmailRequest{
		Recipients:   []string{"a@example.com"},
		Subject:      "Hi",
		Content:      "See you soon",
		GenerateJoke: true,
		JokeTopic:    "cats",
	})
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, "Here's a joke about cats:\n\nCats are purr-fect.\n\nSee you soon", sent.Text)
}

func TestSendEmail_JokeFallback(t *testing.T) {
	f := newFixture(t)
	f.generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	var sent *notify.Message
	f.mailer.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*notify.Message)
	}).Return(nil)

	_, err := f.dispatcher.SendEmail(context.Background(), EmailRequest{
		Recipients:   []string{"a@example.com"},
		Content:      "Body",
		GenerateJoke: true,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sent.Text, "Here's a joke about computer:\n\n"+jokeFallback))
}

func TestSendEmail_MailerError(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("rate limited"))

	_, err := f.dispatcher.SendEmail(context.Background(), EmailRequest{
		Recipients: []string{"a@example.com"},
		Content:    "Body",
	})
	assert.EqualError(t, err, "rate limited")
}

func TestScheduleMeeting(t *testing.T) {
	f := newFixture(t)
	database.CreateTestMeeting(t, f.db, "Roadmap kickoff", "a@example.com")

	f.generator.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "meeting about Roadmap") && strings.Contains(p, "Roadmap kickoff")
	})).Return("1. Objectives", nil)
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *notify.Message) bool {
		return m.Subject == "Meeting Confirmation: Roadmap"
	})).Return(nil)

	result, err := f.dispatcher.ScheduleMeeting(context.Background(), MeetingRequest{
		Subject:      "Roadmap",
		Start:        start,
		Duration:     30,
		Participants: []string{"a@example.com", "bob"},
		Source:       database.SourceChat,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Meeting)
	assert.Equal(t, "1. Objectives", result.Meeting.Content)
	assert.Equal(t, []string{"a@example.com"}, result.Meeting.Participants)
	assert.Len(t, result.Invalid, 1)
	assert.True(t, result.Notified)
	f.generator.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestScheduleMeeting_AgendaFallbackAndMailFailure(t *testing.T) {
	f := newFixture(t)
	f.generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	f.mailer.On("Send", mock.Anything, mock.Anything).Return(notify.ErrNotConfigured)

	result, err := f.dispatcher.ScheduleMeeting(context.Background(), MeetingRequest{
		Subject:      "Sync",
		Start:        start,
		Duration:     30,
		Participants: []string{"a@example.com"},
	})
	require.NoError(t, err, "the meeting exists even though the email failed")
	assert.Equal(t, agendaFallback, result.Meeting.Content)
	assert.False(t, result.Notified)
}

func TestScheduleMeeting_FromEmailUsesGivenDescription(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *notify.Message) bool {
		return m.Subject == "Meeting Confirmed: Sync"
	})).Return(nil)

	result, err := f.dispatcher.ScheduleMeeting(context.Background(), MeetingRequest{
		Subject:      "Sync",
		Start:        start,
		Duration:     30,
		Participants: []string{"a@example.com"},
		Description:  "From the email",
		Source:       database.SourceEmail,
	})
	require.NoError(t, err)
	assert.Equal(t, "From the email", result.Meeting.Content)
	f.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	f.mailer.AssertExpectations(t)
}

func TestScheduleMeeting_NoValidRecipients(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatcher.ScheduleMeeting(context.Background(), MeetingRequest{
		Subject:  "Sync",
		Start:    start,
		Duration: 30,
	})
	assert.ErrorIs(t, err, ErrNoValidRecipients)

	all, err := f.service.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRequestConfirmation(t *testing.T) {
	f := newFixture(t)
	var sent *notify.Message
	f.mailer.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*notify.Message)
	}).Return(nil)

	result, err := f.dispatcher.RequestConfirmation(context.Background(), notify.RequestDetails{
		Subject:      "Sync",
		Start:        start,
		Duration:     30,
		Participants: []string{"a@example.com", "broken@"},
		Link:         "http://localhost:3001/confirm_meeting/1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, result.Valid)
	assert.Equal(t, []string{"a@example.com"}, sent.To)
	assert.Equal(t, "Meeting Request: Sync", sent.Subject)
	require.Len(t, sent.Attachments, 1)
}

func TestDispatcher_NilMailer(t *testing.T) {
	svc := meetings.NewService(database.NewTestDB(t), nil, "UTC", nil)
	d := New(Deps{Meetings: svc})

	_, err := d.SendEmail(context.Background(), EmailRequest{Recipients: []string{"a@example.com"}, Content: "x"})
	assert.ErrorIs(t, err, notify.ErrNotConfigured)
	assert.Equal(t, agendaFallback, d.GenerateAgenda(context.Background(), "x", nil))
	assert.Equal(t, jokeFallback, d.GenerateJoke(context.Background(), ""))
}
