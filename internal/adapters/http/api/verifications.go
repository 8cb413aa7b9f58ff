// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/internal/domain/types"
)

// VerificationDependencies defines the interface for the coach queue.
type VerificationDependencies interface {
	PendingVerifications(ctx context.Context, actor model.Actor, locationID string, limit, offset int) (*types.ResultPage, error)
}

// VerificationsHandler handles the pending verification queue.
type VerificationsHandler struct {
	deps VerificationDependencies
	auth *Authenticator
}

// NewVerificationsHandler creates a new verifications handler.
func NewVerificationsHandler(deps VerificationDependencies, auth *Authenticator) *VerificationsHandler {
	return &VerificationsHandler{deps: deps, auth: auth}
}

// HandlePending handles GET /verifications/pending requests. The queue
// holds pending and disputed results; location_id narrows it to one venue.
func (h *VerificationsHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	actor, err := h.auth.Authenticate(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	page, err := h.deps.PendingVerifications(r.Context(), actor, r.URL.Query().Get("location_id"), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
