package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeeting() *database.Meeting {
	start := time.Date(2025, 3, 14, 14, 0, 0, 0, time.UTC)
	return &database.Meeting{
		Subject:      "Quarterly review",
		StartTime:    start,
		EndTime:      start.Add(45 * time.Minute),
		Participants: []string{"a@example.com", "b@example.com"},
		Content:      "1. Numbers\n2. Plans",
		MeetLink:     "https://meet.google.com/abc",
		CalendarLink: "https://calendar.google.com/event?eid=1",
	}
}

func TestMeetingConfirmation(t *testing.T) {
	msg, err := MeetingConfirmation(testMeeting())
	require.NoError(t, err)

	assert.Equal(t, "Meeting Confirmation: Quarterly review", msg.Subject)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "https://meet.google.com/abc")
	assert.Contains(t, msg.HTML, "Friday, March 14, 2025 at 2:00 PM")
	assert.Contains(t, msg.HTML, "1. Numbers")
}

func TestMeetingConfirmation_OmitsMissingLinks(t *testing.T) {
	m := testMeeting()
	m.MeetLink = ""
	m.CalendarLink = ""

	msg, err := MeetingConfirmation(m)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "Google Meet Link")
	assert.NotContains(t, msg.HTML, "View in Calendar")
}

func TestMeetingRequest(t *testing.T) {
	qr, err := ConfirmationQR("http://localhost:3001/confirm_meeting/1")
	require.NoError(t, err)

	msg, err := MeetingRequest(RequestDetails{
		Subject:      "Sync",
		Start:        time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC),
		Duration:     30,
		Participants: []string{"a@example.com"},
		ContentHTML:  "Hi<br><script>x</script>",
		Link:         "http://localhost:3001/confirm_meeting/1",
	}, &qr)
	require.NoError(t, err)

	assert.Equal(t, "Meeting Request: Sync", msg.Subject)
	assert.Contains(t, msg.HTML, "/confirm_meeting/1?action=confirm")
	assert.Contains(t, msg.HTML, "/confirm_meeting/1?action=reject")
	assert.Contains(t, msg.HTML, "30 minutes")
	assert.Contains(t, msg.HTML, "Hi<br>")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "cid:confirm-qr")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "image/png", msg.Attachments[0].ContentType)
	assert.NotEmpty(t, msg.Attachments[0].Content)
}

func TestMeetingRequest_WithoutQR(t *testing.T) {
	msg, err := MeetingRequest(RequestDetails{Subject: "Sync", Link: "http://x/confirm_meeting/2"}, nil)
	require.NoError(t, err)
	assert.Empty(t, msg.Attachments)
	assert.NotContains(t, msg.HTML, "cid:")
}

func TestMeetingConfirmed(t *testing.T) {
	msg, err := MeetingConfirmed(testMeeting())
	require.NoError(t, err)
	assert.Equal(t, "Meeting Confirmed: Quarterly review", msg.Subject)
	assert.Contains(t, msg.HTML, "45 minutes")
	assert.Contains(t, msg.HTML, "a@example.com, b@example.com")
}

func TestPlainEmail(t *testing.T) {
	msg := PlainEmail([]string{"a@example.com"}, "Hello", "line one\nline <two>")
	assert.Equal(t, "line one\nline <two>", msg.Text)
	assert.Contains(t, msg.HTML, "line one<br>line &lt;two&gt;")
}

func TestConfirmationQR(t *testing.T) {
	qr, err := ConfirmationQR("http://localhost:3001/confirm_meeting/7")
	require.NoError(t, err)
	assert.Equal(t, "confirm-qr", qr.ContentID)
	// PNG magic number
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, qr.Content[:4])
}

func newTestResendClient(t *testing.T, handler http.HandlerFunc) *resend.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := resend.NewCustomClient(server.Client(), "re_test")
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	return client
}

func TestResendMailer_Send(t *testing.T) {
	var body map[string]any
	client := newTestResendClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "email-1"}`))
	})

	mailer := NewResendMailerWithClient(client, "Assistant <a@resend.dev>", nil)
	require.True(t, mailer.IsConfigured())

	err := mailer.Send(context.Background(), PlainEmail([]string{"x@example.com"}, "Hi", "Body"))
	require.NoError(t, err)

	assert.Equal(t, "Assistant <a@resend.dev>", body["from"])
	assert.Equal(t, []any{"x@example.com"}, body["to"])
	assert.Equal(t, "Hi", body["subject"])
}

func TestResendMailer_APIError(t *testing.T) {
	client := newTestResendClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode": 422, "name": "validation_error", "message": "bad from"}`))
	})

	mailer := NewResendMailerWithClient(client, "a@resend.dev", nil)
	err := mailer.Send(context.Background(), PlainEmail([]string{"x@example.com"}, "Hi", "Body"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend send failed")
}

func TestResendMailer_NotConfigured(t *testing.T) {
	mailer := NewResendMailer("", "a@resend.dev", nil)
	assert.False(t, mailer.IsConfigured())
	assert.ErrorIs(t, mailer.Send(context.Background(), &Message{To: []string{"x@example.com"}}), ErrNotConfigured)
}
