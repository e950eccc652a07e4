package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sreevallabh/duolingo-stats/internal/stats"
)

// StatsProvider builds the statistics payload for one request.
type StatsProvider interface {
	Stats(ctx context.Context) stats.Payload
}

// StatsHandler serves the Duolingo statistics endpoint.
type StatsHandler struct {
	stats StatsProvider
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(sp StatsProvider) *StatsHandler {
	return &StatsHandler{stats: sp}
}

// Routes registers the stats route on the given chi router.
func (h *StatsHandler) Routes(r chi.Router) {
	r.Get("/duolingo-stats", h.Get)
}

// Get always answers 200; a failed upstream fetch is reported in the body
// through success=false and the error field.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Stats(r.Context()))
}
