package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/assistant"
	"github.com/ProgramacionCECADE/kiosk-assistant/pkg/logging"
)

// AssistantHandler exposes the conversation core over HTTP for the kiosk
// frontend.
type AssistantHandler struct {
	service *assistant.Service
	logger  *logging.Logger
}

func NewAssistantHandler(service *assistant.Service, logger *logging.Logger) *AssistantHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AssistantHandler{service: service, logger: logger}
}

type createSessionRequest struct {
	SessionID string                 `json:"session_id,omitempty"`
	Profile   *assistant.UserProfile `json:"profile,omitempty"`
}

type messageRequest struct {
	Text string `json:"text"`
}

// HealthCheck reports service liveness.
func (h *AssistantHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSession registers a new conversation session. The store itself
// overwrites on duplicate create, so the handler checks existence first and
// answers 409.
func (h *AssistantHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil {
		// An empty body is fine; the server generates the id.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if h.service.Store().Exists(sessionID) {
		http.Error(w, "session already exists", http.StatusConflict)
		return
	}

	session, err := h.service.Store().Create(r.Context(), sessionID, req.Profile)
	if err != nil {
		h.logger.Error("failed to create session", "error", err.Error())
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// GetSession returns the aggregate snapshot for one session.
func (h *AssistantHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.service.Store().Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, assistant.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load session", "session_id", sessionID, "error", err.Error())
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// PostMessage runs one conversation turn and returns the reply.
func (h *AssistantHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.service.HandleUtterance(r.Context(), sessionID, req.Text)
	if err != nil {
		if errors.Is(err, assistant.ErrSuperseded) {
			http.Error(w, "superseded by a newer message", http.StatusConflict)
			return
		}
		h.logger.Error("turn failed", "session_id", sessionID, "error", err.Error())
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// ResetAll wipes every session. Exhibit-reset surface, not normal operation.
func (h *AssistantHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Store().ClearAll(r.Context()); err != nil {
		h.logger.Error("failed to clear sessions", "error", err.Error())
		http.Error(w, "failed to clear sessions", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
