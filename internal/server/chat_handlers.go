package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/omriShneor/meeting_assistant/internal/dialogue"
)

const (
	sessionCookie = "session_id"
	turnTimeout   = 60 * time.Second
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatError struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := s.chatSession(w, r)
	reply, err := s.engine.HandleTurn(r.Context(), sessionID, req.Message)
	if errors.Is(err, dialogue.ErrEmptyMessage) {
		s.respondError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, reply)
}

// chatSession returns the caller's session id, issuing a cookie for new callers.
func (s *Server) chatSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   !s.devMode,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// handleChatWebSocket runs one dialogue session for the lifetime of the connection.
func (s *Server) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer ws.CloseNow()

	sessionID := uuid.NewString()
	logger := s.logger.With("session_id", sessionID)
	logger.Info("chat websocket connected")

	ctx := r.Context()
	for {
		var req chatRequest
		if err := wsjson.Read(ctx, ws, &req); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				logger.Warn("chat websocket read failed", "error", err)
			}
			break
		}

		turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
		reply, err := s.engine.HandleTurn(turnCtx, sessionID, req.Message)
		cancel()

		var out any = reply
		if errors.Is(err, dialogue.ErrEmptyMessage) {
			out = chatError{Error: "Message is required"}
		} else if err != nil {
			out = chatError{Error: err.Error()}
		}

		if err := wsjson.Write(ctx, ws, out); err != nil {
			logger.Warn("chat websocket write failed", "error", err)
			break
		}
	}

	ws.Close(websocket.StatusNormalClosure, "session ended")
	logger.Info("chat websocket disconnected")
}
