package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CreateTestMeeting inserts a committed meeting with sensible defaults.
func CreateTestMeeting(t *testing.T, db *DB, subject string, participants ...string) *Meeting {
	t.Helper()

	start := time.Date(2025, 3, 14, 14, 0, 0, 0, time.UTC)
	m, err := db.CreateMeeting(&Meeting{
		Subject:      subject,
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		Participants: participants,
		Timezone:     "UTC",
		Source:       SourceChat,
	})
	require.NoError(t, err, "failed to create test meeting")
	return m
}
