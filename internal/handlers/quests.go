package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/storyforge/narrative-engine/internal/services"
	"github.com/storyforge/narrative-engine/internal/storage"
	"github.com/storyforge/narrative-engine/pkg/engine"
	"github.com/storyforge/narrative-engine/pkg/quest"
)

// QuestHandler serves the quest query surface and lifecycle operations.
//
// Routes:
//
//	GET  /v1/sessions/{id}/quests                  - Active quests
//	POST /v1/sessions/{id}/quests                  - Create a quest
//	GET  /v1/sessions/{id}/quests/analysis         - Graph metrics
//	GET  /v1/sessions/{id}/quests/opportunities    - Pending emergent quests
//	GET  /v1/sessions/{id}/quests/{qid}            - Quest by ID
//	GET  /v1/sessions/{id}/quests/{qid}/connections - Quest edges
//	POST /v1/sessions/{id}/quests/{qid}/complete   - Complete a quest
//	POST /v1/sessions/{id}/quests/{qid}/fail       - Fail a quest
//	POST /v1/sessions/{id}/quests/{qid}/activate   - Activate an opportunity
type QuestHandler struct {
	storage  storage.Storage
	sessions *services.SessionService
	logger   *slog.Logger
}

func NewQuestHandler(s storage.Storage, sessions *services.SessionService, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{
		storage:  s,
		sessions: sessions,
		logger:   logger,
	}
}

// CompleteQuestRequest defines the body for quest completion.
type CompleteQuestRequest struct {
	Method      string `json:"method"`
	FinalChoice string `json:"final_choice,omitempty"`
}

// FailQuestRequest defines the body for quest failure.
type FailQuestRequest struct {
	Reason string `json:"reason"`
}

func (h *QuestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// /v1/sessions/{id}/quests[/...]
	parts := splitPath(r.URL.Path)
	if len(parts) < 4 || parts[3] != "quests" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path")
		return
	}
	sessionID, ok := parseSessionID(parts[2])
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	session, eng, err := h.loadEngine(r.Context(), sessionID)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, err.Error())
		return
	}
	g := eng.Graph()

	rest := parts[4:]

	switch r.Method {
	case http.MethodGet:
		switch {
		case len(rest) == 0:
			writeJSON(w, h.logger, http.StatusOK, g.ActiveQuests())
		case len(rest) == 1 && rest[0] == "analysis":
			writeJSON(w, h.logger, http.StatusOK, g.Analyze())
		case len(rest) == 1 && rest[0] == "opportunities":
			writeJSON(w, h.logger, http.StatusOK, g.PendingOpportunities())
		case len(rest) == 1:
			q := g.GetQuest(rest[0])
			if q == nil {
				writeError(w, h.logger, http.StatusNotFound, "Quest not found")
				return
			}
			writeJSON(w, h.logger, http.StatusOK, q)
		case len(rest) == 2 && rest[1] == "connections":
			writeJSON(w, h.logger, http.StatusOK, g.Connections(rest[0]))
		default:
			writeError(w, h.logger, http.StatusBadRequest, "Invalid quest path")
		}

	case http.MethodPost:
		switch {
		case len(rest) == 0:
			h.handleCreate(w, r, session, eng)
		case len(rest) == 2 && rest[1] == "complete":
			h.handleComplete(w, r, session, eng, rest[0])
		case len(rest) == 2 && rest[1] == "fail":
			h.handleFail(w, r, session, eng, rest[0])
		case len(rest) == 2 && rest[1] == "activate":
			h.handleActivate(w, r, session, eng, rest[0])
		default:
			writeError(w, h.logger, http.StatusBadRequest, "Invalid quest path")
		}

	default:
		h.logger.Warn("Method not allowed for quests endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
	}
}

func (h *QuestHandler) handleCreate(w http.ResponseWriter, r *http.Request, session *storage.Session, eng *engine.Engine) {
	var spec quest.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if spec.Title == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Quest title is required")
		return
	}

	q := eng.Graph().CreateQuest(spec)
	if !h.save(w, r.Context(), session, eng) {
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, q)
}

func (h *QuestHandler) handleComplete(w http.ResponseWriter, r *http.Request, session *storage.Session, eng *engine.Engine, questID string) {
	var req CompleteQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	q := eng.CompleteQuest(questID, quest.CompletionData{Method: req.Method, FinalChoice: req.FinalChoice})
	if q == nil {
		writeError(w, h.logger, http.StatusConflict, "Quest is not active")
		return
	}
	if !h.save(w, r.Context(), session, eng) {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, q)
}

func (h *QuestHandler) handleFail(w http.ResponseWriter, r *http.Request, session *storage.Session, eng *engine.Engine, questID string) {
	var req FailQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	q := eng.FailQuest(questID, req.Reason)
	if q == nil {
		writeError(w, h.logger, http.StatusConflict, "Quest is not active")
		return
	}
	if !h.save(w, r.Context(), session, eng) {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, q)
}

func (h *QuestHandler) handleActivate(w http.ResponseWriter, r *http.Request, session *storage.Session, eng *engine.Engine, questID string) {
	q := eng.Graph().ActivateOpportunity(questID)
	if q == nil {
		writeError(w, h.logger, http.StatusConflict, "Quest is not a pending opportunity")
		return
	}
	if !h.save(w, r.Context(), session, eng) {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, q)
}

func (h *QuestHandler) loadEngine(ctx context.Context, sessionID uuid.UUID) (*storage.Session, *engine.Engine, error) {
	session, err := h.storage.LoadSession(ctx, sessionID)
	if err != nil || session == nil {
		return nil, nil, errSessionNotFound
	}
	eng, _, err := h.sessions.LoadEngine(ctx, session)
	if err != nil {
		h.logger.Error("Failed to build engine", "session_id", sessionID, "error", err)
		return nil, nil, errSessionNotFound
	}
	return session, eng, nil
}

func (h *QuestHandler) save(w http.ResponseWriter, ctx context.Context, session *storage.Session, eng *engine.Engine) bool {
	session.Snapshot = eng.Export()
	if err := h.storage.SaveSession(ctx, session.ID, session); err != nil {
		h.logger.Error("Failed to save session", "session_id", session.ID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return false
	}
	return true
}
