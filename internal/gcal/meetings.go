package gcal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
)

// ErrNotAuthenticated is returned when no OAuth token has been granted yet.
var ErrNotAuthenticated = errors.New("google calendar not authenticated")

// IsNotAuthenticated reports whether err means the calendar is not connected.
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}

// MeetingInput describes a meeting to create.
type MeetingInput struct {
	Summary        string
	Description    string
	StartTime      time.Time
	EndTime        time.Time
	Timezone       string
	Attendees      []string
	RecurrenceRule string // RRULE body, e.g. FREQ=WEEKLY;BYDAY=FR
}

// CreatedMeeting is what Google returned for a new event.
type CreatedMeeting struct {
	EventID      string
	MeetLink     string
	CalendarLink string
}

// CreateMeeting inserts an event with a Google Meet conference and invites the attendees.
func (c *Client) CreateMeeting(ctx context.Context, input MeetingInput) (*CreatedMeeting, error) {
	service, err := c.calendarService()
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
			TimeZone: input.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
			TimeZone: input.Timezone,
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	if len(input.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, len(input.Attendees))
		for i, email := range input.Attendees {
			attendees[i] = &calendar.EventAttendee{Email: email}
		}
		event.Attendees = attendees
	}

	if rule := strings.TrimSpace(input.RecurrenceRule); rule != "" {
		if !strings.HasPrefix(rule, "RRULE:") {
			rule = "RRULE:" + rule
		}
		event.Recurrence = []string{rule}
	}

	// ConferenceDataVersion(1) is required for the Meet link to be generated.
	created, err := service.Events.Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	result := &CreatedMeeting{
		EventID:      created.Id,
		MeetLink:     created.HangoutLink,
		CalendarLink: created.HtmlLink,
	}
	if result.MeetLink == "" && created.ConferenceData != nil {
		for _, ep := range created.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				result.MeetLink = ep.Uri
				break
			}
		}
	}
	return result, nil
}
