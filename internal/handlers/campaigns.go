package handlers

import (
	"log/slog"
	"net/http"

	"github.com/storyforge/narrative-engine/internal/storage"
)

// CampaignHandler serves static campaign data.
//
// Routes:
//
//	GET /v1/campaigns            - List campaigns (name -> filename)
//	GET /v1/campaigns/{filename} - Get a campaign definition
type CampaignHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCampaignHandler(s storage.Storage, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{
		storage: s,
		logger:  logger,
	}
}

func (h *CampaignHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for campaigns endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	parts := splitPath(r.URL.Path)
	// /v1/campaigns or /v1/campaigns/{filename}
	switch len(parts) {
	case 2:
		campaigns, err := h.storage.ListCampaigns(r.Context())
		if err != nil {
			h.logger.Error("Failed to list campaigns", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list campaigns")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, campaigns)

	case 3:
		c, err := h.storage.GetCampaign(r.Context(), parts[2])
		if err != nil {
			h.logger.Warn("Campaign not found", "file", parts[2], "error", err)
			writeError(w, h.logger, http.StatusNotFound, "Campaign not found")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, c)

	default:
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/campaigns or /v1/campaigns/{filename}")
	}
}
