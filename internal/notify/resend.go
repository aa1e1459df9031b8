package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// ResendMailer sends email via the Resend API
type ResendMailer struct {
	client      *resend.Client
	fromAddress string
	logger      *slog.Logger
}

// NewResendMailer creates a Resend mailer. With an empty key the mailer
// reports itself as not configured and Send fails.
func NewResendMailer(apiKey, from string, logger *slog.Logger) *ResendMailer {
	if logger == nil {
		logger = slog.Default()
	}
	m := &ResendMailer{fromAddress: from, logger: logger}
	if apiKey != "" {
		m.client = resend.NewClient(apiKey)
	}
	return m
}

// NewResendMailerWithClient uses a prebuilt client, e.g. one pointed at a test server.
func NewResendMailerWithClient(client *resend.Client, from string, logger *slog.Logger) *ResendMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResendMailer{client: client, fromAddress: from, logger: logger}
}

// IsConfigured returns true if the mailer has server-side config
func (r *ResendMailer) IsConfigured() bool {
	return r.client != nil && r.fromAddress != ""
}

// Send delivers msg to all of its recipients in one request.
func (r *ResendMailer) Send(ctx context.Context, msg *Message) error {
	if !r.IsConfigured() {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipient specified")
	}

	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	for _, a := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Content:     a.Content,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		})
	}

	resp, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	r.logger.Info("email sent", "id", resp.Id, "recipients", len(msg.To), "subject", msg.Subject)
	return nil
}
