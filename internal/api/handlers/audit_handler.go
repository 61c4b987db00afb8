package handlers

import (
	"net/http"
	"strconv"

	"github.com/dcastane/regportal-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuditHandler handles HTTP requests for the audit event feed.
type AuditHandler struct {
	service services.AuditServiceProvider
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(service services.AuditServiceProvider) *AuditHandler {
	return &AuditHandler{service: service}
}

// GetRecent handles the request to get the most recent audit events.
func (h *AuditHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}

	events, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve audit events")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}
