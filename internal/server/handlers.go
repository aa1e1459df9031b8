package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/dispatch"
	"github.com/omriShneor/meeting_assistant/internal/timeutil"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := s.db.PingContext(r.Context()); err != nil {
		dbStatus = "unavailable"
	}

	calendarStatus := "not_configured"
	if s.gcalClient != nil {
		calendarStatus = "disconnected"
		if s.gcalClient.IsAuthenticated() {
			calendarStatus = "connected"
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"database":          dbStatus,
		"calendar":          calendarStatus,
		"mail_configured":   s.mailer != nil && s.mailer.IsConfigured(),
		"llm_provider":      s.llmProvider,
		"active_sessions":   s.engine.Store().Len(),
		"pending_proposals": len(s.proposals.Workflow().Pending()),
	})
}

// Meetings

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	list, err := s.meetings.List()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []database.Meeting{}
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid meeting id")
		return
	}

	m, err := s.meetings.Get(id)
	if errors.Is(err, database.ErrMeetingNotFound) {
		s.respondError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

type scheduleRequest struct {
	Subject        string   `json:"subject"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	Duration       int      `json:"duration"`
	Participants   []string `json:"participants"`
	Description    string   `json:"description"`
	RecurrenceRule string   `json:"recurrence_rule"`
}

type scheduleResponse struct {
	Status            string                      `json:"status"`
	Meeting           *database.Meeting           `json:"meeting"`
	InvalidRecipients []dispatch.InvalidRecipient `json:"invalid_recipients,omitempty"`
	Notified          bool                        `json:"notified"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		s.respondError(w, http.StatusBadRequest, "subject is required")
		return
	}
	if req.Duration < 0 {
		s.respondError(w, http.StatusBadRequest, "duration must be positive")
		return
	}
	if req.Duration == 0 {
		req.Duration = s.defaultDuration
	}
	if len(req.Participants) == 0 {
		s.respondError(w, http.StatusBadRequest, "participants are required")
		return
	}

	start, fallback, err := timeutil.ParseDateTime(strings.TrimSpace(req.Date+" "+req.Time), s.timezone)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid date or time, expected YYYY-MM-DD and HH:MM")
		return
	}
	if fallback {
		s.logger.Warn("unknown timezone, scheduling in UTC", "timezone", s.timezone)
	}

	result, err := s.dispatcher.ScheduleMeeting(r.Context(), dispatch.MeetingRequest{
		Subject:        req.Subject,
		Start:          start,
		Duration:       req.Duration,
		Participants:   req.Participants,
		Description:    req.Description,
		IsRecurring:    req.RecurrenceRule != "",
		RecurrenceRule: req.RecurrenceRule,
		Source:         database.SourceForm,
	})
	if errors.Is(err, dispatch.ErrNoValidRecipients) {
		s.respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":              "No valid email addresses provided",
			"invalid_recipients": result.Invalid,
		})
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, scheduleResponse{
		Status:            "scheduled",
		Meeting:           result.Meeting,
		InvalidRecipients: result.Invalid,
		Notified:          result.Notified,
	})
}

// Google account

func (s *Server) handleGCalConnect(w http.ResponseWriter, r *http.Request) {
	if s.gcalClient == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Google Calendar not configured")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"auth_url": s.gcalClient.AuthURL()})
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.gcalClient == nil {
		http.Error(w, "Google Calendar not configured", http.StatusServiceUnavailable)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	if err := s.gcalClient.ExchangeCode(r.Context(), code); err != nil {
		s.logger.Error("failed to exchange OAuth code", "error", err)
		http.Error(w, "Failed to connect Google account", http.StatusInternalServerError)
		return
	}

	s.renderPage(w, http.StatusOK, page{
		Title:   "Google Account Connected",
		Message: "Calendar invites with Google Meet links will now be created for scheduled meetings. You can close this window.",
	})
}
