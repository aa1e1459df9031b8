package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetMeeting(t *testing.T) {
	db := NewTestDB(t)

	start := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	created, err := db.CreateMeeting(&Meeting{
		Subject:        "Roadmap review",
		StartTime:      start,
		EndTime:        start.Add(45 * time.Minute),
		Participants:   []string{"a@example.com", "b@corp.io"},
		Content:        "Agenda",
		Timezone:       "UTC",
		MeetLink:       "https://meet.google.com/abc-defg-hij",
		IsRecurring:    true,
		RecurrenceRule: "FREQ=WEEKLY;BYDAY=FR",
		Source:         SourceEmail,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := db.GetMeeting(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roadmap review", got.Subject)
	assert.True(t, start.Equal(got.StartTime))
	assert.Equal(t, 45, got.Duration())
	assert.Equal(t, []string{"a@example.com", "b@corp.io"}, got.Participants)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", got.MeetLink)
	assert.True(t, got.IsRecurring)
	assert.Equal(t, SourceEmail, got.Source)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetMeeting_NotFound(t *testing.T) {
	db := NewTestDB(t)

	_, err := db.GetMeeting(42)
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestCreateMeeting_DefaultSource(t *testing.T) {
	db := NewTestDB(t)

	m := CreateTestMeeting(t, db, "Standup", "a@example.com")
	got, err := db.GetMeeting(m.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceChat, got.Source)
}

func TestListRecentMeetings(t *testing.T) {
	db := NewTestDB(t)

	for _, subject := range []string{"one", "two", "three", "four"} {
		CreateTestMeeting(t, db, subject, "a@example.com")
	}

	recent, err := db.ListRecentMeetings(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "three", recent[0].Subject)
	assert.Equal(t, "four", recent[1].Subject)

	all, err := db.ListMeetings()
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "one", all[0].Subject)
}

func TestProcessedEmails(t *testing.T) {
	db := NewTestDB(t)

	processed, err := db.IsEmailProcessed("msg-1")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, db.MarkEmailProcessed("msg-1", 3, "pending"))
	require.NoError(t, db.MarkEmailProcessed("msg-1", 0, "duplicate"))

	processed, err = db.IsEmailProcessed("msg-1")
	require.NoError(t, err)
	assert.True(t, processed)
}
