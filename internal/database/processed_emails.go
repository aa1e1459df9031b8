package database

import (
	"database/sql"
	"fmt"
)

// IsEmailProcessed reports whether a Gmail message was already ingested.
func (d *DB) IsEmailProcessed(messageID string) (bool, error) {
	var exists int
	err := d.QueryRow(`SELECT 1 FROM processed_emails WHERE email_id = ?`, messageID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check processed email: %w", err)
	}
	return true, nil
}

// MarkEmailProcessed records the outcome of ingesting a Gmail message.
// proposalID is zero when no proposal was created.
func (d *DB) MarkEmailProcessed(messageID string, proposalID int64, outcome string) error {
	_, err := d.Exec(`
		INSERT OR IGNORE INTO processed_emails (email_id, proposal_id, outcome)
		VALUES (?, ?, ?)
	`, messageID, proposalID, outcome)
	if err != nil {
		return fmt.Errorf("failed to mark email processed: %w", err)
	}
	return nil
}
