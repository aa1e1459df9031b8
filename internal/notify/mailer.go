package notify

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a mailer that has no API key.
var ErrNotConfigured = errors.New("mailer not configured")

// Attachment is a file sent with a message. A non-empty ContentID makes it
// inline, referenced from the HTML body as cid:<ContentID>.
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string
	Content     []byte
}

// Message is one outgoing email.
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
	// IsConfigured returns true if the mailer has server-side config
	IsConfigured() bool
}
