package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/storyforge/narrative-engine/internal/services"
	"github.com/storyforge/narrative-engine/internal/storage"
)

// CreateSessionRequest defines the request body for starting a session.
type CreateSessionRequest struct {
	Campaign string `json:"campaign"` // Required: campaign filename
}

// SessionHandler manages playthrough sessions.
//
// Routes:
//
//	POST /v1/sessions         - Create a new session from a campaign
//	GET /v1/sessions/{id}     - Read session state
//	DELETE /v1/sessions/{id}  - Delete a session
type SessionHandler struct {
	storage  storage.Storage
	sessions *services.SessionService
	logger   *slog.Logger
}

func NewSessionHandler(s storage.Storage, sessions *services.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage:  s,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	parts := splitPath(r.URL.Path)

	switch r.Method {
	case http.MethodPost:
		if len(parts) != 2 {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/sessions")
			return
		}
		h.handleCreate(w, r)

	case http.MethodGet, http.MethodDelete:
		if len(parts) != 3 {
			writeError(w, h.logger, http.StatusBadRequest, "Session ID is required")
			return
		}
		id, ok := parseSessionID(parts[2])
		if !ok {
			h.logger.Warn("Invalid session ID", "id", parts[2])
			writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
			return
		}
		if r.Method == http.MethodGet {
			h.handleRead(w, r, id)
		} else {
			h.handleDelete(w, r, id)
		}

	default:
		h.logger.Warn("Method not allowed for sessions endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Campaign == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Campaign is required")
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), req.Campaign)
	if err != nil {
		h.logger.Error("Failed to create session", "campaign", req.Campaign, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Failed to create session: "+err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, session)
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	session, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if session == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, session)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
