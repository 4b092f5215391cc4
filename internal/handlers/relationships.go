package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/storyforge/narrative-engine/internal/services"
	"github.com/storyforge/narrative-engine/internal/storage"
	"github.com/storyforge/narrative-engine/pkg/relationship"
)

// RelationshipHandler serves the relationship query surface. All routes
// are read-only; mutation happens through facts.
//
// Routes:
//
//	GET /v1/sessions/{id}/relationships           - Full context snapshot
//	GET /v1/sessions/{id}/relationships/allies    - Allies with capabilities
//	GET /v1/sessions/{id}/relationships/enemies   - Enemies with threat levels
//	GET /v1/sessions/{id}/relationships/romance   - Romantic interests
//	GET /v1/sessions/{id}/relationships/conflicts - Faction tensions
//	GET /v1/sessions/{id}/relationships/gates     - Companions past an approval gate (min param)
//	GET /v1/sessions/{id}/relationships/history   - Change log (kind, target, limit params)
type RelationshipHandler struct {
	storage  storage.Storage
	sessions *services.SessionService
	logger   *slog.Logger
}

func NewRelationshipHandler(s storage.Storage, sessions *services.SessionService, logger *slog.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		storage:  s,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *RelationshipHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for relationships endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	// /v1/sessions/{id}/relationships[/{view}]
	parts := splitPath(r.URL.Path)
	if len(parts) < 4 || parts[3] != "relationships" || len(parts) > 5 {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path")
		return
	}
	sessionID, ok := parseSessionID(parts[2])
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	session, err := h.storage.LoadSession(r.Context(), sessionID)
	if err != nil || session == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	eng, _, err := h.sessions.LoadEngine(r.Context(), session)
	if err != nil {
		h.logger.Error("Failed to build engine", "session_id", sessionID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session state")
		return
	}
	network := eng.Network()

	view := ""
	if len(parts) == 5 {
		view = parts[4]
	}

	switch view {
	case "":
		writeJSON(w, h.logger, http.StatusOK, network.Context())
	case "allies":
		writeJSON(w, h.logger, http.StatusOK, network.Allies(relationship.DefaultAllyThreshold))
	case "enemies":
		writeJSON(w, h.logger, http.StatusOK, network.Enemies(relationship.DefaultEnemyThreshold))
	case "romance":
		writeJSON(w, h.logger, http.StatusOK, network.RomanticInterests())
	case "conflicts":
		writeJSON(w, h.logger, http.StatusOK, network.FactionConflicts())
	case "gates":
		min := 70
		if v := r.URL.Query().Get("min"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				min = n
			}
		}
		writeJSON(w, h.logger, http.StatusOK, network.ApprovalGates(min))
	case "history":
		q := r.URL.Query()
		limit := 50
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		writeJSON(w, h.logger, http.StatusOK, network.History(q.Get("kind"), q.Get("target"), limit))
	default:
		writeError(w, h.logger, http.StatusBadRequest, "Unknown relationships view: "+view)
	}
}
