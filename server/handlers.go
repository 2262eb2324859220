package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"spurchat/chat"
	"spurchat/model"
)

type errorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message,omitempty"`
	Details []ValidationDetail `json:"details,omitempty"`
}

type messageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type historyResponse struct {
	Messages []model.Message `json:"messages"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type indexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Message: "Spur Store Chatbot API",
		Version: apiVersion,
		Endpoints: map[string]string{
			"health":      "GET /health",
			"sendMessage": "POST /api/chat/message",
			"getHistory":  "GET /api/chat/history/:sessionId",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request entity too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	details, err := validateBody(s.schema, body)
	if err != nil {
		// not parseable as JSON
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid request",
			Details: []ValidationDetail{{Path: []string{}, Code: "invalid_json", Message: "Request body must be valid JSON"}},
		})
		return
	}
	if len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Details: details})
		return
	}

	var req messageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	result, err := s.svc.ProcessMessage(r.Context(), req.Message, req.SessionID)
	if err != nil {
		var verr *chat.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "Invalid request",
				Details: []ValidationDetail{{Path: []string{"message"}, Code: "invalid_message", Message: verr.Message}},
			})
			return
		}
		s.logger.Error().Err(err).Msg("error processing message")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if !isUUID(sessionID) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid session ID format"})
		return
	}

	msgs, err := s.svc.GetConversationHistory(r.Context(), sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("error fetching history")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Messages: msgs})
}

// isUUID accepts only the canonical 8-4-4-4-12 hex form.
func isUUID(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
