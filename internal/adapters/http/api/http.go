// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lfalegacy/pitchrank/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ResultDependencies
	StatisticsDependencies
	LeaderboardDependencies
	VerificationDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	resultsHandler       *ResultsHandler
	statisticsHandler    *StatisticsHandler
	leaderboardHandler   *LeaderboardHandler
	verificationsHandler *VerificationsHandler
	dashboardHandler     *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, auth *Authenticator) *Server {
	if auth == nil {
		auth = NewAuthenticator("")
	}
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		resultsHandler:       NewResultsHandler(deps, auth),
		statisticsHandler:    NewStatisticsHandler(deps, auth),
		leaderboardHandler:   NewLeaderboardHandler(deps, auth),
		verificationsHandler: NewVerificationsHandler(deps, auth),
		dashboardHandler:     newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandleResults, "results"))
	mux.HandleFunc("/results/", MetricsMiddleware(s.resultsHandler.HandleResultAction, "result_action"))
	mux.HandleFunc("/statistics/me", MetricsMiddleware(s.statisticsHandler.HandleMyStatistics, "statistics_me"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/verifications/pending", MetricsMiddleware(s.verificationsHandler.HandlePending, "verifications_pending"))
}

// submitResultRequest mirrors the OpenAPI schema for POST /results.
type submitResultRequest struct {
	SessionID       string             `json:"session_id"`
	LocationID      string             `json:"location_id"`
	GameType        string             `json:"game_type"`
	FinalScore      float64            `json:"final_score"`
	MaxScore        float64            `json:"max_possible_score"`
	SkillScores     map[string]float64 `json:"skill_scores"`
	DurationSeconds int                `json:"duration_seconds"`
	RecordedAt      string             `json:"recorded_at"`
	Weather         map[string]string  `json:"weather"`
	Equipment       map[string]string  `json:"equipment"`
}

func (req submitResultRequest) validate() error {
	switch {
	case strings.TrimSpace(req.SessionID) == "":
		return errors.New("missing session_id")
	case strings.TrimSpace(req.GameType) == "":
		return errors.New("missing game_type")
	}
	if req.RecordedAt != "" {
		if _, err := time.Parse(time.RFC3339, req.RecordedAt); err != nil {
			return errors.New("invalid recorded_at; must be RFC3339")
		}
	}
	return nil
}

// toModel converts the wire payload into the domain submission. validate
// must have passed first.
func (req submitResultRequest) toModel() *model.GameResult {
	r := &model.GameResult{
		SessionID:       req.SessionID,
		LocationID:      req.LocationID,
		GameType:        model.GameType(req.GameType),
		FinalScore:      req.FinalScore,
		MaxScore:        req.MaxScore,
		DurationSeconds: req.DurationSeconds,
		Weather:         req.Weather,
		Equipment:       req.Equipment,
	}
	if len(req.SkillScores) > 0 {
		r.SkillScores = make(map[model.Skill]float64, len(req.SkillScores))
		for skill, score := range req.SkillScores {
			r.SkillScores[model.Skill(skill)] = score
		}
	}
	if req.RecordedAt != "" {
		ts, _ := time.Parse(time.RFC3339, req.RecordedAt)
		r.RecordedAt = ts
	}
	return r
}

// verifyRequest mirrors the OpenAPI schema for POST /results/{id}/verify.
// An empty body verifies with no feedback.
type verifyRequest struct {
	Resolution string `json:"resolution"`
	Feedback   string `json:"feedback"`
}

// disputeRequest mirrors the OpenAPI schema for POST /results/{id}/dispute.
type disputeRequest struct {
	Reason string `json:"reason"`
}

// submitResponse acknowledges a submission. Duplicate marks a replayed
// session served from the original record.
type submitResponse struct {
	Result    *model.GameResult `json:"result"`
	Duplicate bool              `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates domain sentinel errors into the API's
// status and code vocabulary. Unknown errors become an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err)
	case errors.Is(err, model.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, model.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err)
	case errors.Is(err, model.ErrConflict):
		writeError(w, http.StatusServiceUnavailable, "concurrency_conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// decodeJSON decodes a request body, tolerating an empty body when
// allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return nil
	case allowEmpty && errors.Is(err, io.EOF):
		return nil
	default:
		return errors.New("malformed JSON body")
	}
}

// parsePagination reads limit/offset query parameters. Absent values
// stay zero; the service applies its own defaults and caps.
func parsePagination(r *http.Request) (int, int, error) {
	var limit, offset int
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, errors.New("offset must not be negative")
		}
		offset = n
	}
	return limit, offset, nil
}

// parseTimeParam reads an optional RFC3339 query parameter.
func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s; must be RFC3339", name)
	}
	return ts, nil
}
