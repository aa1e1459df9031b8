package dialogue

import (
	"fmt"
	"strings"

	"github.com/omriShneor/meeting_assistant/internal/intent"
)

const (
	askMeetingTime       = "What time would you like to schedule the meeting?"
	askMeetingRecipients = "Who would you like to invite to the meeting?"
	askMeetingSubject    = "What would you like to title the meeting?"
	askEmailRecipients   = "Who would you like to send the email to?"
	askEmailSubject      = "What would you like the subject of the email to be?"
	askEmailContent      = "What would you like to say in the email?"
	helpText             = "I can help you schedule meetings or send emails. What would you like to do?"

	defaultMeetingSubject = "Meeting"
	defaultEmailSubject   = "Email from Meeting Assistant"
)

// Action is what a turn should carry out once all required slots are filled.
type Action int

const (
	ActionNone Action = iota
	ActionScheduleMeeting
	ActionSendEmail
)

func (a Action) String() string {
	switch a {
	case ActionScheduleMeeting:
		return "schedule_meeting"
	case ActionSendEmail:
		return "send_email"
	default:
		return "none"
	}
}

// Decision is the policy output for one turn.
type Decision struct {
	Action   Action
	Text     string
	ShowForm bool
}

type slotQuestion struct {
	question Question
	missing  bool
	text     string
	label    string
}

// Policy decides between asking and acting.
type Policy struct{}

// Decide inspects the session, records the question it asks in
// s.LastQuestion, and returns what to say or do. A slot question is not
// repeated on the turn right after it was asked, and the optional subject is
// asked at most once per request; when that leaves nothing to
// ask and the request still cannot proceed, Decide returns a reminder naming
// the missing details instead of staying silent.
func (p Policy) Decide(s *Session) Decision {
	switch s.Intent {
	case intent.ScheduleMeeting:
		slots := []slotQuestion{
			{QuestionTime, s.Slots.Time == nil, askMeetingTime, "the meeting time"},
			{QuestionRecipients, len(s.Slots.Recipients) == 0, askMeetingRecipients, "who to invite"},
			{QuestionSubject, s.Slots.Subject == "" && !s.SubjectAsked, askMeetingSubject, ""},
		}
		if d, ok := ask(s, slots); ok {
			return d
		}
		if s.Slots.Time != nil && len(s.Slots.Recipients) > 0 {
			return Decision{Action: ActionScheduleMeeting}
		}
		return Decision{Text: reminder(slots[:2], "schedule the meeting"), ShowForm: true}

	case intent.SendEmail:
		slots := []slotQuestion{
			{QuestionRecipients, len(s.Slots.Recipients) == 0, askEmailRecipients, "the recipients"},
			{QuestionSubject, s.Slots.Subject == "" && !s.SubjectAsked, askEmailSubject, ""},
			{QuestionContent, s.Slots.Content == "", askEmailContent, "what the email should say"},
		}
		if d, ok := ask(s, slots); ok {
			return d
		}
		if len(s.Slots.Recipients) > 0 && s.Slots.Content != "" {
			return Decision{Action: ActionSendEmail}
		}
		return Decision{Text: reminder([]slotQuestion{slots[0], slots[2]}, "send the email")}

	default:
		s.LastQuestion = QuestionIntent
		return Decision{Text: helpText}
	}
}

func ask(s *Session, slots []slotQuestion) (Decision, bool) {
	for _, q := range slots {
		if q.missing && s.LastQuestion != q.question {
			s.LastQuestion = q.question
			if q.question == QuestionSubject {
				s.SubjectAsked = true
			}
			return Decision{Text: q.text}, true
		}
	}
	return Decision{}, false
}

func reminder(required []slotQuestion, goal string) string {
	var missing []string
	for _, q := range required {
		if q.missing {
			missing = append(missing, q.label)
		}
	}
	return fmt.Sprintf("I still need %s before I can %s.", strings.Join(missing, " and "), goal)
}
