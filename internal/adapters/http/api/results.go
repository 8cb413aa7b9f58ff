// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
	"github.com/lfalegacy/pitchrank/internal/domain/types"
)

// ResultDependencies defines the interface for result lifecycle dependencies
type ResultDependencies interface {
	SubmitResult(ctx context.Context, actor model.Actor, sub *model.GameResult) (*model.GameResult, bool, error)
	VerifyResult(ctx context.Context, actor model.Actor, resultID, resolution, feedback string) (*model.GameResult, error)
	DisputeResult(ctx context.Context, actor model.Actor, resultID, reason string) (*model.GameResult, error)
	ArchiveResult(ctx context.Context, actor model.Actor, resultID string) (*model.GameResult, error)
	ListResults(ctx context.Context, actor model.Actor, q types.ResultQuery) (*types.ResultPage, error)
}

// ResultsHandler handles result submission, listing and lifecycle actions
type ResultsHandler struct {
	deps ResultDependencies
	auth *Authenticator
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(deps ResultDependencies, auth *Authenticator) *ResultsHandler {
	return &ResultsHandler{deps: deps, auth: auth}
}

// HandleResults handles POST /results and GET /results requests
func (h *ResultsHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	actor, err := h.auth.Authenticate(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r, actor)
	case http.MethodGet:
		h.list(w, r, actor)
	default:
		http.NotFound(w, r)
	}
}

func (h *ResultsHandler) submit(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	var req submitResultRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, duplicate, err := h.deps.SubmitResult(r.Context(), actor, req.toModel())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Replays acknowledge the original record instead of minting a new one.
	status := http.StatusCreated
	if duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, submitResponse{Result: result, Duplicate: duplicate})
}

func (h *ResultsHandler) list(w http.ResponseWriter, r *http.Request, actor model.Actor) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	from, err := parseTimeParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	query := r.URL.Query()
	page, err := h.deps.ListResults(r.Context(), actor, types.ResultQuery{
		GameType:   query.Get("game_type"),
		Status:     query.Get("status"),
		LocationID: query.Get("location_id"),
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleResultAction handles POST /results/{id}/verify, /dispute and
// /archive requests
func (h *ResultsHandler) HandleResultAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	actor, err := h.auth.Authenticate(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/results/")
	resultID, action, ok := strings.Cut(rest, "/")
	if !ok || resultID == "" || strings.Contains(action, "/") {
		http.NotFound(w, r)
		return
	}

	var result *model.GameResult
	switch action {
	case "verify":
		var req verifyRequest
		if decodeErr := decodeJSON(r, &req, true); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "bad_request", decodeErr)
			return
		}
		result, err = h.deps.VerifyResult(r.Context(), actor, resultID, req.Resolution, req.Feedback)
	case "dispute":
		var req disputeRequest
		if decodeErr := decodeJSON(r, &req, true); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "bad_request", decodeErr)
			return
		}
		result, err = h.deps.DisputeResult(r.Context(), actor, resultID, req.Reason)
	case "archive":
		result, err = h.deps.ArchiveResult(r.Context(), actor, resultID)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
