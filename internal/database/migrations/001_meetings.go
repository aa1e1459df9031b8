package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "meetings",
		Up:      meetings,
	})
}

func meetings(db *sql.DB) error {
	return execAll(db, []string{
		`CREATE TABLE IF NOT EXISTS meetings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			participants TEXT NOT NULL DEFAULT '[]',
			content TEXT NOT NULL DEFAULT '',
			timezone TEXT NOT NULL DEFAULT 'UTC',
			meet_link TEXT NOT NULL DEFAULT '',
			calendar_link TEXT NOT NULL DEFAULT '',
			google_event_id TEXT NOT NULL DEFAULT '',
			is_recurring BOOLEAN NOT NULL DEFAULT 0,
			recurrence_rule TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT 'chat',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_start_time ON meetings(start_time)`,
	})
}
