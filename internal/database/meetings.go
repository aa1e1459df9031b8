package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMeetingNotFound is returned when no meeting has the requested id.
var ErrMeetingNotFound = errors.New("meeting not found")

// MeetingSource records which surface produced a meeting.
type MeetingSource string

const (
	SourceChat  MeetingSource = "chat"
	SourceEmail MeetingSource = "email"
	SourceForm  MeetingSource = "form"
)

// Meeting is a committed meeting.
type Meeting struct {
	ID             int64         `json:"id"`
	Subject        string        `json:"subject"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Participants   []string      `json:"participants"`
	Content        string        `json:"content"`
	Timezone       string        `json:"timezone"`
	MeetLink       string        `json:"meet_link,omitempty"`
	CalendarLink   string        `json:"calendar_link,omitempty"`
	GoogleEventID  string        `json:"google_event_id,omitempty"`
	IsRecurring    bool          `json:"is_recurring"`
	RecurrenceRule string        `json:"recurrence_rule,omitempty"`
	Source         MeetingSource `json:"source"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Duration returns the meeting length in minutes.
func (m *Meeting) Duration() int {
	return int(m.EndTime.Sub(m.StartTime).Minutes())
}

const meetingColumns = `id, subject, start_time, end_time, participants, content, timezone,
	meet_link, calendar_link, google_event_id, is_recurring, recurrence_rule, source, created_at`

// CreateMeeting stores a committed meeting and fills in its id.
func (d *DB) CreateMeeting(m *Meeting) (*Meeting, error) {
	participants, err := json.Marshal(m.Participants)
	if err != nil {
		return nil, fmt.Errorf("failed to encode participants: %w", err)
	}
	if m.Source == "" {
		m.Source = SourceChat
	}

	result, err := d.Exec(`
		INSERT INTO meetings (
			subject, start_time, end_time, participants, content, timezone,
			meet_link, calendar_link, google_event_id, is_recurring, recurrence_rule, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.Subject, m.StartTime, m.EndTime, string(participants), m.Content, m.Timezone,
		m.MeetLink, m.CalendarLink, m.GoogleEventID, m.IsRecurring, m.RecurrenceRule, m.Source,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting id: %w", err)
	}

	m.ID = id
	m.CreatedAt = time.Now()
	return m, nil
}

// GetMeeting retrieves a meeting by its id.
func (d *DB) GetMeeting(id int64) (*Meeting, error) {
	row := d.QueryRow(`SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return m, nil
}

// ListMeetings returns every committed meeting, oldest first.
func (d *DB) ListMeetings() ([]Meeting, error) {
	rows, err := d.Query(`SELECT ` + meetingColumns + ` FROM meetings ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()
	return scanMeetings(rows)
}

// ListRecentMeetings returns the last limit meetings, oldest first.
func (d *DB) ListRecentMeetings(limit int) ([]Meeting, error) {
	rows, err := d.Query(`
		SELECT * FROM (
			SELECT `+meetingColumns+` FROM meetings ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meetings: %w", err)
	}
	defer rows.Close()
	return scanMeetings(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*Meeting, error) {
	var m Meeting
	var participants string
	err := row.Scan(
		&m.ID, &m.Subject, &m.StartTime, &m.EndTime, &participants, &m.Content, &m.Timezone,
		&m.MeetLink, &m.CalendarLink, &m.GoogleEventID, &m.IsRecurring, &m.RecurrenceRule, &m.Source, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(participants), &m.Participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants for meeting %d: %w", m.ID, err)
	}
	return &m, nil
}

func scanMeetings(rows *sql.Rows) ([]Meeting, error) {
	var meetings []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, *m)
	}
	return meetings, rows.Err()
}
