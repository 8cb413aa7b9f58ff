// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
)

// StatisticsDependencies defines the interface for statistics operations.
type StatisticsDependencies interface {
	MyStatistics(ctx context.Context, actor model.Actor) (*model.PlayerStatistics, error)
}

// StatisticsHandler handles player statistics requests.
type StatisticsHandler struct {
	deps StatisticsDependencies
	auth *Authenticator
}

// NewStatisticsHandler creates a new statistics handler.
func NewStatisticsHandler(deps StatisticsDependencies, auth *Authenticator) *StatisticsHandler {
	return &StatisticsHandler{deps: deps, auth: auth}
}

// HandleMyStatistics handles GET /statistics/me requests.
func (h *StatisticsHandler) HandleMyStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	actor, err := h.auth.Authenticate(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	stats, err := h.deps.MyStatistics(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
