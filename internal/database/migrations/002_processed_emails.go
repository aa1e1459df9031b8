package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 2,
		Name:    "processed_emails",
		Up:      processedEmails,
	})
}

// processedEmails tracks Gmail messages the watcher already ingested.
func processedEmails(db *sql.DB) error {
	return execAll(db, []string{
		`CREATE TABLE IF NOT EXISTS processed_emails (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email_id TEXT NOT NULL UNIQUE,
			proposal_id INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL DEFAULT '',
			processed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	})
}
