package intent

import (
	"bytes"
	"fmt"
)

// instructions is the fixed block sent ahead of every extraction request.
const instructions = `You are an AI assistant that helps understand meeting and email related requests.

Extract the following information from the user's message and return it as a single JSON object:
{
    "intent": "schedule_meeting" or "send_email",
    "time": "extracted time (e.g., '2:00 PM tomorrow' or '10:00 AM today')",
    "duration": "duration in minutes (e.g., '30' or '60')",
    "recipients": ["list of recipients"],
    "subject": "meeting subject or email subject",
    "content": "email content if applicable",
    "generate_joke": true/false,
    "joke_topic": "topic for the joke if applicable",
    "is_recurring": true/false,
    "recurrence_rule": "recurrence rule if applicable (e.g., 'FREQ=WEEKLY;BYDAY=FR;UNTIL=20240430T235959Z' for weekly Friday meetings in April)"
}

Consider the conversation context when extracting information. For example:
- If the user is responding to a question about recipients, extract the recipient information
- If the user is responding to a question about subject, extract the subject information
- If the user is responding to a question about content, extract the content information
- If the user wants to send a joke, set generate_joke to true and extract the joke topic
- If the user wants to schedule a recurring meeting, set is_recurring to true and extract the recurrence rule

Example:
User: "schedule a meeting tomorrow at 2pm with sallu"
Response: {
    "intent": "schedule_meeting",
    "time": "2:00 PM tomorrow",
    "duration": "30",
    "recipients": ["sallu"],
    "subject": "Meeting",
    "content": "",
    "generate_joke": false,
    "joke_topic": "",
    "is_recurring": false,
    "recurrence_rule": ""
}`

// BuildPrompt renders the instruction block, prior turns, optional context
// about past meetings and the new message.
func BuildPrompt(message string, history []Turn, meetingContext string) string {
	var prompt bytes.Buffer

	prompt.WriteString(instructions)

	prompt.WriteString("\n\nCurrent conversation context:\n")
	if len(history) == 0 {
		prompt.WriteString("(no previous messages)\n")
	}
	for _, turn := range history {
		speaker := "User"
		if turn.Role == RoleAssistant {
			speaker = "Assistant"
		}
		prompt.WriteString(fmt.Sprintf("%s: %s\n", speaker, turn.Text))
	}

	if meetingContext != "" {
		prompt.WriteString("\nRelated past meetings:\n")
		prompt.WriteString(meetingContext)
		prompt.WriteString("\n")
	}

	prompt.WriteString(fmt.Sprintf("\nUser message: %s\nResponse:", message))

	return prompt.String()
}
