package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/database"
)

const timeLayout = "Monday, January 2, 2006 at 3:04 PM"

const layoutHead = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
  <div style="background-color: white; border-radius: 8px; padding: 24px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
`

const layoutFoot = `
    <hr style="margin-top: 32px; border: none; border-top: 1px solid #eee;">
    <p style="color: #999; font-size: 12px; margin-top: 16px;">Meeting Assistant</p>
  </div>
</body>
</html>`

var confirmationTmpl = template.Must(template.New("confirmation").Parse(layoutHead + `
    <h2 style="margin: 0 0 16px 0; color: #333;">Meeting Confirmation</h2>
    <p>Your meeting has been scheduled:</p>
    <ul>
      <li><strong>Subject:</strong> {{.Subject}}</li>
      <li><strong>Start Time:</strong> {{.Start}}</li>
      <li><strong>End Time:</strong> {{.End}}</li>
      {{if .MeetLink}}<li><strong>Google Meet Link:</strong> <a href="{{.MeetLink}}">{{.MeetLink}}</a></li>{{end}}
      {{if .CalendarLink}}<li><strong>Calendar Event:</strong> <a href="{{.CalendarLink}}">View in Calendar</a></li>{{end}}
      {{if .Recurrence}}<li><strong>Repeats:</strong> {{.Recurrence}}</li>{{end}}
    </ul>
    <h3>Agenda:</h3>
    <pre style="white-space: pre-wrap;">{{.Content}}</pre>
` + layoutFoot))

var requestTmpl = template.Must(template.New("request").Parse(layoutHead + `
    <h2 style="margin: 0 0 16px 0; color: #333;">Meeting Request</h2>
    <p>A meeting has been requested with the following details:</p>
    <ul>
      <li><strong>Subject:</strong> {{.Subject}}</li>
      <li><strong>Proposed Time:</strong> {{.ProposedTime}}</li>
      <li><strong>Duration:</strong> {{.Duration}} minutes</li>
      <li><strong>Participants:</strong> {{.Participants}}</li>
    </ul>
    <p>Please confirm or reject this meeting request by clicking one of the buttons below:</p>
    <div style="margin: 20px 0;">
      <a href="{{.ConfirmURL}}" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; margin-right: 10px;">Confirm Meeting</a>
      <a href="{{.RejectURL}}" style="background-color: #f44336; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Reject Meeting</a>
    </div>
    <p>Or copy and paste this link in your browser:</p>
    <p style="word-break: break-all;">{{.Link}}</p>
    {{if .QR}}<p><img src="cid:{{.QR}}" alt="Scan to confirm" width="160" height="160"></p>{{end}}
    <h3>Meeting Details:</h3>
    <div>{{.Content}}</div>
` + layoutFoot))

var confirmedTmpl = template.Must(template.New("confirmed").Parse(layoutHead + `
    <h2 style="margin: 0 0 16px 0; color: #333;">Meeting Confirmed</h2>
    <p>Your meeting has been confirmed with the following details:</p>
    <ul>
      <li><strong>Subject:</strong> {{.Subject}}</li>
      <li><strong>Start Time:</strong> {{.Start}}</li>
      <li><strong>Duration:</strong> {{.Duration}} minutes</li>
      <li><strong>Participants:</strong> {{.Participants}}</li>
    </ul>
    <p>This meeting has been added to your calendar.</p>
    <h3>Meeting Details:</h3>
    <pre style="white-space: pre-wrap;">{{.Content}}</pre>
` + layoutFoot))

// MeetingConfirmation is sent to participants after a meeting is created from chat or the form.
func MeetingConfirmation(m *database.Meeting) (*Message, error) {
	data := map[string]any{
		"Subject":      m.Subject,
		"Start":        m.StartTime.Format(timeLayout),
		"End":          m.EndTime.Format(timeLayout),
		"MeetLink":     m.MeetLink,
		"CalendarLink": m.CalendarLink,
		"Recurrence":   m.RecurrenceRule,
		"Content":      m.Content,
	}
	html, err := render(confirmationTmpl, data)
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      m.Participants,
		Subject: "Meeting Confirmation: " + m.Subject,
		HTML:    html,
	}, nil
}

// RequestDetails describes a pending meeting proposal awaiting confirmation.
type RequestDetails struct {
	Subject      string
	Start        time.Time
	Duration     int
	Participants []string
	// ContentHTML is the original email body with newlines already turned into <br>.
	ContentHTML string
	Link        string
}

// MeetingRequest asks participants to confirm or reject a proposal. When
// qr is non-nil it is attached inline and shown under the link.
func MeetingRequest(d RequestDetails, qr *Attachment) (*Message, error) {
	data := map[string]any{
		"Subject":      d.Subject,
		"ProposedTime": d.Start.Format(timeLayout),
		"Duration":     d.Duration,
		"Participants": strings.Join(d.Participants, ", "),
		"ConfirmURL":   template.URL(d.Link + "?action=confirm"),
		"RejectURL":    template.URL(d.Link + "?action=reject"),
		"Link":         d.Link,
		// The body is escaped before the newline replacement, so only <br> is raw.
		"Content": template.HTML(strings.ReplaceAll(template.HTMLEscapeString(d.ContentHTML), "&lt;br&gt;", "<br>")),
	}
	msg := &Message{
		To:      d.Participants,
		Subject: "Meeting Request: " + d.Subject,
	}
	if qr != nil {
		data["QR"] = qr.ContentID
		msg.Attachments = []Attachment{*qr}
	}

	html, err := render(requestTmpl, data)
	if err != nil {
		return nil, err
	}
	msg.HTML = html
	return msg, nil
}

// MeetingConfirmed is sent once a proposal has been accepted.
func MeetingConfirmed(m *database.Meeting) (*Message, error) {
	data := map[string]any{
		"Subject":      m.Subject,
		"Start":        m.StartTime.Format(timeLayout),
		"Duration":     m.Duration(),
		"Participants": strings.Join(m.Participants, ", "),
		"Content":      m.Content,
	}
	html, err := render(confirmedTmpl, data)
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      m.Participants,
		Subject: "Meeting Confirmed: " + m.Subject,
		HTML:    html,
	}, nil
}

// PlainEmail builds a free-form message. Content is sent as text and as
// HTML with line breaks preserved.
func PlainEmail(to []string, subject, content string) *Message {
	escaped := template.HTMLEscapeString(content)
	return &Message{
		To:      to,
		Subject: subject,
		Text:    content,
		HTML:    "<html><body><p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p></body></html>",
	}
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
