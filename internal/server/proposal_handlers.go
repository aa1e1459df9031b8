package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/omriShneor/meeting_assistant/internal/database"
	"github.com/omriShneor/meeting_assistant/internal/proposal"
)

type ingestRequest struct {
	EmailContent string `json:"email_content"`
}

type ingestResponse struct {
	Status           string             `json:"status"`
	MeetingID        int64              `json:"meeting_id"`
	ConfirmationLink string             `json:"confirmation_link"`
	MeetingDetails   *proposal.Proposal `json:"meeting_details"`
	Notified         bool               `json:"notified"`
}

func (s *Server) handleIngestEmail(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.EmailContent) == "" {
		s.respondError(w, http.StatusBadRequest, "email_content is required")
		return
	}

	sub, err := s.proposals.Submit(r.Context(), req.EmailContent)
	if errors.Is(err, proposal.ErrExtractionFailed) {
		s.respondError(w, http.StatusBadRequest, "Could not extract meeting details from email")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, ingestResponse{
		Status:           "pending_confirmation",
		MeetingID:        sub.Proposal.ID,
		ConfirmationLink: sub.Link,
		MeetingDetails:   sub.Proposal,
		Notified:         sub.Notified,
	})
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.proposals.Workflow().Pending())
}

type confirmRequest struct {
	Confirm *bool `json:"confirm"`
}

// handleConfirmJSON resolves a proposal from an API client.
func (s *Server) handleConfirmJSON(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(r)
	if !ok {
		s.respondError(w, http.StatusNotFound, "Meeting request not found")
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Confirm == nil {
		s.respondError(w, http.StatusBadRequest, "Confirmation status not provided")
		return
	}

	if !*req.Confirm {
		if err := s.proposals.Reject(id); err != nil {
			s.respondProposalError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{
			"status":  "rejected",
			"message": "Meeting request rejected",
		})
		return
	}

	m, err := s.proposals.Confirm(r.Context(), id)
	if err != nil {
		s.respondProposalError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "confirmed",
		"meeting": m,
	})
}

func (s *Server) respondProposalError(w http.ResponseWriter, err error) {
	if errors.Is(err, proposal.ErrPendingNotFound) {
		s.respondError(w, http.StatusNotFound, "Meeting request not found")
		return
	}
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

// handleConfirmLink serves the confirm and reject links from the request email.
func (s *Server) handleConfirmLink(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(r)
	if !ok {
		s.renderNotFound(w)
		return
	}

	switch r.URL.Query().Get("action") {
	case "confirm":
		m, err := s.proposals.Confirm(r.Context(), id)
		if errors.Is(err, proposal.ErrPendingNotFound) {
			s.renderNotFound(w)
			return
		}
		if err != nil {
			s.logger.Error("failed to confirm meeting request", "id", id, "error", err)
			s.renderPage(w, http.StatusInternalServerError, page{
				Title:   "Something Went Wrong",
				Message: "The meeting could not be scheduled. Please try the link again later.",
			})
			return
		}
		s.renderPage(w, http.StatusOK, page{
			Title:   "Meeting Confirmed",
			Message: "The meeting has been scheduled and invites were sent to all participants.",
			Details: meetingDetails(m),
		})

	case "reject":
		if err := s.proposals.Reject(id); err != nil {
			s.renderNotFound(w)
			return
		}
		s.renderPage(w, http.StatusOK, page{
			Title:   "Meeting Rejected",
			Message: "Meeting request rejected. No meeting was scheduled.",
		})

	default:
		p, err := s.proposals.Workflow().Get(id)
		if err != nil {
			s.renderNotFound(w)
			return
		}
		s.renderPage(w, http.StatusBadRequest, page{
			Title:   "Confirmation status not provided",
			Message: "Use the Confirm or Reject link from the meeting request email.",
			Details: []pageDetail{
				{Label: "Subject", Value: p.Subject},
				{Label: "Proposed time", Value: p.ProposedTime},
				{Label: "Participants", Value: strings.Join(p.Participants, ", ")},
			},
		})
	}
}

func (s *Server) renderNotFound(w http.ResponseWriter) {
	s.renderPage(w, http.StatusNotFound, page{
		Title:   "Meeting request not found",
		Message: "This meeting request was already handled or does not exist.",
	})
}

func proposalID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func meetingDetails(m *database.Meeting) []pageDetail {
	details := []pageDetail{
		{Label: "Subject", Value: m.Subject},
		{Label: "Time", Value: m.StartTime.Format("Monday, January 2, 2006 at 03:04 PM MST")},
		{Label: "Duration", Value: fmt.Sprintf("%d minutes", m.Duration())},
		{Label: "Participants", Value: strings.Join(m.Participants, ", ")},
	}
	if m.MeetLink != "" {
		details = append(details, pageDetail{Label: "Google Meet", Value: m.MeetLink})
	}
	return details
}
