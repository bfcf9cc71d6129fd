package api

import (
	"net/http"

	"chopline-be/internal/stats"
)

type StatsHandler struct {
	aggregator stats.Aggregator
}

func NewStatsHandler(aggregator stats.Aggregator) *StatsHandler {
	return &StatsHandler{aggregator: aggregator}
}

// Driver handles GET /stats/driver: today's rollup for the calling driver.
func (h *StatsHandler) Driver(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	rollup, err := h.aggregator.DriverStats(r.Context(), actor.ID, stats.Today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rollup)
}

// Restaurant handles GET /stats/restaurant.
func (h *StatsHandler) Restaurant(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	rollup, err := h.aggregator.RestaurantStats(r.Context(), actor.ID, stats.Today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rollup)
}
