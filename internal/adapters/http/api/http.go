// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mjelle/shotgroup/internal/domain/model"
	"github.com/mjelle/shotgroup/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// AnalyzeTarget produces immediate single-target feedback.
	AnalyzeTarget(ctx context.Context, shots []model.Shot, imageWidth, imageHeight float64) (types.TargetReport, error)

	// RecordTarget analyzes and appends to history.
	RecordTarget(ctx context.Context, shots []model.Shot, imageWidth, imageHeight float64, session model.SessionType, ts time.Time) (types.TargetReport, error)

	// History lists stored patterns, most recent first.
	History(ctx context.Context, filter model.DateFilter, sessions []model.SessionType) ([]types.PatternSummary, error)

	// DeleteTarget removes one stored pattern.
	DeleteTarget(ctx context.Context, id string) error

	// Thumbnail returns the externally stored thumbnail, nil when absent.
	Thumbnail(ctx context.Context, id string) ([]byte, error)

	// Insights renders the pooled metrics and coaching payload.
	Insights(ctx context.Context, filter model.DateFilter, sessions []model.SessionType) (types.InsightsPayload, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	targetsHandler  *TargetsHandler
	insightsHandler *InsightsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		targetsHandler:  NewTargetsHandler(deps),
		insightsHandler: NewInsightsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/targets", MetricsMiddleware(s.targetsHandler.HandleTargets, "targets"))
	mux.HandleFunc("/targets/", MetricsMiddleware(s.targetsHandler.HandleTargetByID, "target"))
	mux.HandleFunc("/insights", MetricsMiddleware(s.insightsHandler.HandleGetInsights, "insights"))
}

// historyFilters parses the shared filter/session query parameters.
func historyFilters(r *http.Request) (model.DateFilter, []model.SessionType, error) {
	filter, err := model.ParseDateFilter(r.URL.Query().Get("filter"))
	if err != nil {
		return 0, nil, err
	}
	var sessions []model.SessionType
	for _, name := range r.URL.Query()["session"] {
		st, err := model.ParseSessionType(name)
		if err != nil {
			return 0, nil, err
		}
		sessions = append(sessions, st)
	}
	return filter, sessions, nil
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

// NewKind tags a sentinel error with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// Wrap annotates an upstream error with the failing operation.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
