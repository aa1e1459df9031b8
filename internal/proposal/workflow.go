// Package proposal turns inbound meeting-request emails into pending
// proposals that become meetings only after an explicit confirmation.
package proposal

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/omriShneor/meeting_assistant/internal/timeutil"
)

var (
	// ErrExtractionFailed is returned when an email has no time or no addresses.
	ErrExtractionFailed = errors.New("could not extract meeting details from email")

	// ErrPendingNotFound is returned for ids that are unknown or already resolved.
	ErrPendingNotFound = errors.New("meeting request not found")
)

// Status is the lifecycle state of a proposal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// Proposal is a meeting extracted from an email, awaiting confirmation.
type Proposal struct {
	ID           int64     `json:"id"`
	Subject      string    `json:"subject"`
	ProposedTime string    `json:"proposed_time"`
	Duration     int       `json:"duration"`
	Participants []string  `json:"participants"`
	Content      string    `json:"content"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

const defaultSubject = "Meeting"

var (
	timeRe        = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*(?:AM|PM)|tomorrow at \d{1,2}:\d{2}\s*(?:AM|PM)|today at \d{1,2}:\d{2}\s*(?:AM|PM))`)
	durationRe    = regexp.MustCompile(`(\d+)\s*(?:min|minutes|hour|hours)`)
	participantRe = regexp.MustCompile(`(?:^|\s)([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
)

// Workflow owns the pending table. Ids are sequential from 1 and never reused.
type Workflow struct {
	mu      sync.Mutex
	lastID  int64
	pending map[int64]*Proposal
	now     func() time.Time
}

func NewWorkflow() *Workflow {
	return &Workflow{
		pending: make(map[int64]*Proposal),
		now:     time.Now,
	}
}

// Ingest extracts a meeting from a raw RFC 5322 email and records it as
// pending. Text that is not a well-formed message is treated as a bare body.
func (w *Workflow) Ingest(raw string) (*Proposal, error) {
	subject, body := splitMessage(raw)
	if subject == "" {
		subject = defaultSubject
	}

	timeMatch := timeRe.FindString(body)
	participants := extractParticipants(body)
	if timeMatch == "" || len(participants) == 0 {
		return nil, ErrExtractionFailed
	}

	p := &Proposal{
		Subject:      subject,
		ProposedTime: timeMatch,
		Duration:     extractDuration(body),
		Participants: participants,
		Content:      strings.ReplaceAll(body, "\n", "<br>"),
		Status:       StatusPending,
		CreatedAt:    w.now(),
	}

	w.mu.Lock()
	w.lastID++
	p.ID = w.lastID
	w.pending[p.ID] = p
	w.mu.Unlock()

	return p.clone(), nil
}

// Confirm removes the proposal from the pending table and returns it with
// its start time resolved against now.
func (w *Workflow) Confirm(id int64, now time.Time) (*Proposal, time.Time, error) {
	p, err := w.take(id)
	if err != nil {
		return nil, time.Time{}, err
	}
	p.Status = StatusConfirmed
	return p, ResolveStart(p.ProposedTime, now), nil
}

// Reject removes the proposal from the pending table.
func (w *Workflow) Reject(id int64) (*Proposal, error) {
	p, err := w.take(id)
	if err != nil {
		return nil, err
	}
	p.Status = StatusRejected
	return p, nil
}

// Restore puts a proposal taken by Confirm back into the pending table,
// for when committing it failed.
func (w *Workflow) Restore(p *Proposal) {
	p = p.clone()
	p.Status = StatusPending

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[p.ID] = p
}

// Get returns a pending proposal.
func (w *Workflow) Get(id int64) (*Proposal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pending[id]
	if !ok {
		return nil, ErrPendingNotFound
	}
	return p.clone(), nil
}

// Pending lists the pending proposals by id.
func (w *Workflow) Pending() []*Proposal {
	w.mu.Lock()
	list := make([]*Proposal, 0, len(w.pending))
	for _, p := range w.pending {
		list = append(list, p.clone())
	}
	w.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (w *Workflow) take(id int64) (*Proposal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pending[id]
	if !ok {
		return nil, ErrPendingNotFound
	}
	delete(w.pending, id)
	return p, nil
}

// ResolveStart turns a proposed time into an absolute start. "tomorrow" and
// "today" are relative to now, at the proposed clock time when it parses and
// at now's clock time otherwise. A bare time is taken on now's date and
// moved to the next day if it has already passed.
func ResolveStart(proposed string, now time.Time) time.Time {
	lower := strings.ToLower(proposed)
	relative := strings.Contains(lower, "tomorrow") || strings.Contains(lower, "today")

	start, err := timeutil.ParseTime(strings.Replace(lower, " at ", " ", 1), now)
	switch {
	case err != nil && strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1)
	case err != nil:
		return now
	case !relative && start.Before(now):
		return start.AddDate(0, 0, 1)
	}
	return start
}

func splitMessage(raw string) (subject, body string) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return "", normalizeNewlines(raw)
	}
	subject = decodeHeader(msg.Header.Get("Subject"))

	data, err := readBody(msg)
	if err != nil {
		return subject, ""
	}
	return subject, normalizeNewlines(string(data))
}

// readBody returns the first text/plain part of a multipart message, or the
// whole body otherwise.
func readBody(msg *mail.Message) ([]byte, error) {
	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		if strings.EqualFold(msg.Header.Get("Content-Transfer-Encoding"), "quoted-printable") {
			return io.ReadAll(quotedprintable.NewReader(msg.Body))
		}
		return io.ReadAll(msg.Body)
	}

	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, errors.New("no text/plain part")
		}
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(part.Header.Get("Content-Type"), "text/plain") {
			return io.ReadAll(part)
		}
	}
}

func decodeHeader(v string) string {
	decoded, err := new(mime.WordDecoder).DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}

func normalizeNewlines(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}

func extractDuration(body string) int {
	m := durationRe.FindStringSubmatch(body)
	if m == nil {
		return timeutil.DefaultMinutes
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return timeutil.DefaultMinutes
	}
	if strings.Contains(m[0], "hour") {
		return n * 60
	}
	return n
}

func extractParticipants(body string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range participantRe.FindAllStringSubmatch(body, -1) {
		addr := strings.TrimPrefix(strings.TrimSpace(m[1]), "- ")
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}

func (p *Proposal) clone() *Proposal {
	c := *p
	c.Participants = append([]string(nil), p.Participants...)
	return &c
}

// Locator is the confirmation URL for a proposal.
func Locator(baseURL string, id int64) string {
	return fmt.Sprintf("%s/confirm_meeting/%d", strings.TrimRight(baseURL, "/"), id)
}
