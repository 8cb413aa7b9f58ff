// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/internal/domain/types"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, actor model.Actor, q types.LeaderboardQuery) (*types.LeaderboardPage, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps LeaderboardDependencies
	auth *Authenticator
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, auth *Authenticator) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, auth: auth}
}

// HandleGetLeaderboard handles GET /leaderboard requests. Category,
// qualifier and period select the partition; limit and offset page
// through it. Boards are public: anonymous callers get the page
// without the requesting_user annotation.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	actor, err := h.auth.AuthenticateOptional(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	query := r.URL.Query()
	page, err := h.deps.Leaderboard(r.Context(), actor, types.LeaderboardQuery{
		Category:  query.Get("category"),
		Qualifier: query.Get("qualifier"),
		Period:    query.Get("period"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
