package gcal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)
	return NewClientWithService(service)
}

func TestCreateMeeting(t *testing.T) {
	var got calendar.Event
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("conferenceDataVersion"))
		assert.Equal(t, "all", r.URL.Query().Get("sendUpdates"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "evt-1",
			"htmlLink": "https://www.google.com/calendar/event?eid=evt-1",
			"hangoutLink": "https://meet.google.com/abc-defg-hij"
		}`))
	})

	start := time.Date(2025, 3, 14, 14, 0, 0, 0, time.UTC)
	created, err := client.CreateMeeting(context.Background(), MeetingInput{
		Summary:        "Weekly sync",
		Description:    "Agenda",
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
		Timezone:       "UTC",
		Attendees:      []string{"a@example.com", "b@example.com"},
		RecurrenceRule: "FREQ=WEEKLY;BYDAY=FR",
	})
	require.NoError(t, err)

	assert.Equal(t, "evt-1", created.EventID)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", created.MeetLink)
	assert.Equal(t, "https://www.google.com/calendar/event?eid=evt-1", created.CalendarLink)

	assert.Equal(t, "Weekly sync", got.Summary)
	assert.Equal(t, "2025-03-14T14:00:00Z", got.Start.DateTime)
	assert.Equal(t, "2025-03-14T14:30:00Z", got.End.DateTime)
	require.Len(t, got.Attendees, 2)
	assert.Equal(t, []string{"RRULE:FREQ=WEEKLY;BYDAY=FR"}, got.Recurrence)
	require.NotNil(t, got.ConferenceData)
	assert.Equal(t, "hangoutsMeet", got.ConferenceData.CreateRequest.ConferenceSolutionKey.Type)
	assert.NotEmpty(t, got.ConferenceData.CreateRequest.RequestId)
}

func TestCreateMeeting_MeetLinkFromEntryPoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "evt-2",
			"conferenceData": {"entryPoints": [
				{"entryPointType": "phone", "uri": "tel:+1-555"},
				{"entryPointType": "video", "uri": "https://meet.google.com/xyz"}
			]}
		}`))
	})

	start := time.Now()
	created, err := client.CreateMeeting(context.Background(), MeetingInput{
		Summary: "Sync", StartTime: start, EndTime: start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/xyz", created.MeetLink)
}

func TestCreateMeeting_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "insufficient permissions"}}`))
	})

	_, err := client.CreateMeeting(context.Background(), MeetingInput{Summary: "Sync"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create event")
}

func TestCreateMeeting_NotAuthenticated(t *testing.T) {
	client := &Client{calendarID: "primary"}

	assert.False(t, client.IsAuthenticated())
	_, err := client.CreateMeeting(context.Background(), MeetingInput{Summary: "Sync"})
	assert.True(t, IsNotAuthenticated(err))
	assert.Nil(t, client.HTTPClient(context.Background()))
}
