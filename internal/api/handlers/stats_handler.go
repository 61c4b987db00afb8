package handlers

import (
	"net/http"

	"github.com/dcastane/regportal-be/internal/monitoring"
	"github.com/dcastane/regportal-be/internal/services"
	"github.com/rs/zerolog/log"
)

// StatsHandler reports storage and registration stats for the admin view.
type StatsHandler struct {
	service    services.UserServiceProvider
	uploadRoot string
}

// NewStatsHandler creates a new StatsHandler watching uploadRoot.
func NewStatsHandler(service services.UserServiceProvider, uploadRoot string) *StatsHandler {
	return &StatsHandler{service: service, uploadRoot: uploadRoot}
}

// Get handles the stats request.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to count users")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}

	resp := map[string]interface{}{"users": count}
	if usage, err := monitoring.StorageStats(h.uploadRoot); err == nil {
		resp["disk"] = map[string]interface{}{
			"totalBytes":  usage.Total,
			"freeBytes":   usage.Free,
			"usedPercent": usage.UsedPercent,
		}
	} else {
		log.Warn().Err(err).Str("path", h.uploadRoot).Msg("Failed to read upload volume usage")
	}

	writeJSON(w, http.StatusOK, resp)
}
