package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/storyforge/narrative-engine/internal/services/queue"
	"github.com/storyforge/narrative-engine/internal/worker"
	"github.com/storyforge/narrative-engine/pkg/events"
	queuePkg "github.com/storyforge/narrative-engine/pkg/queue"
)

// RecordFactRequest defines the request body for submitting a fact to a
// session. Exactly one payload field matching Type should be set.
type RecordFactRequest struct {
	Type string `json:"type"` // choice | relationship | world_event | day_passed

	Choice       *events.Choice             `json:"choice,omitempty"`
	Relationship *events.RelationshipChange `json:"relationship,omitempty"`
	World        *events.WorldEvent         `json:"world,omitempty"`
	Days         int                        `json:"days,omitempty"`

	// Async enqueues the fact for the worker instead of applying it
	// in-request. Requires a configured queue.
	Async bool `json:"async,omitempty"`
}

// FactsHandler accepts inbound facts for a session.
//
// Routes:
//
//	POST /v1/sessions/{id}/facts - Record a fact
type FactsHandler struct {
	processor *worker.FactProcessor
	factQueue *queue.FactQueue // nil when running without a worker
	logger    *slog.Logger
}

func NewFactsHandler(processor *worker.FactProcessor, factQueue *queue.FactQueue, logger *slog.Logger) *FactsHandler {
	return &FactsHandler{
		processor: processor,
		factQueue: factQueue,
		logger:    logger,
	}
}

func (h *FactsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for facts endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	// /v1/sessions/{id}/facts
	parts := splitPath(r.URL.Path)
	if len(parts) != 4 || parts[3] != "facts" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/sessions/{id}/facts")
		return
	}
	sessionID, ok := parseSessionID(parts[2])
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	var req RecordFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	fact, ok := factFromRequest(req)
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, "Unknown fact type or missing payload")
		return
	}

	queueReq := queuePkg.NewRequest(sessionID, fact)

	if req.Async {
		if h.factQueue == nil {
			writeError(w, h.logger, http.StatusServiceUnavailable, "Async processing is not configured")
			return
		}
		if err := h.factQueue.Enqueue(r.Context(), queueReq); err != nil {
			h.logger.Error("Failed to enqueue fact", "error", err, "session_id", sessionID)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to enqueue fact")
			return
		}
		writeJSON(w, h.logger, http.StatusAccepted, map[string]string{
			"request_id": queueReq.RequestID,
			"status":     "queued",
		})
		return
	}

	if err := h.processor.Process(r.Context(), queueReq); err != nil {
		h.logger.Error("Failed to process fact", "error", err, "session_id", sessionID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to process fact: "+err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"request_id": queueReq.RequestID,
		"status":     "applied",
	})
}

// factFromRequest maps the API's fact shorthand onto an engine fact.
func factFromRequest(req RecordFactRequest) (events.Fact, bool) {
	fact := events.Fact{At: time.Now()}

	switch req.Type {
	case "choice", string(events.TypeChoiceRecorded):
		if req.Choice == nil {
			return fact, false
		}
		fact.Type = events.TypeChoiceRecorded
		fact.Choice = req.Choice
	case "relationship", string(events.TypeRelationshipChanged):
		if req.Relationship == nil {
			return fact, false
		}
		fact.Type = events.TypeRelationshipChanged
		fact.Relationship = req.Relationship
	case "world_event", string(events.TypeWorldEvent):
		if req.World == nil {
			return fact, false
		}
		fact.Type = events.TypeWorldEvent
		fact.World = req.World
	case "day_passed", string(events.TypeDayPassed):
		days := req.Days
		if days <= 0 {
			days = 1
		}
		fact.Type = events.TypeDayPassed
		fact.Days = days
	default:
		return fact, false
	}

	return fact, true
}
