// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mjelle/shotgroup/internal/domain/geometry"
	"github.com/mjelle/shotgroup/internal/domain/model"
)

// shotRequest mirrors one marked hole in pixel space.
type shotRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// targetRequest mirrors the POST /targets body. When Record is true the
// analyzed target is appended to history under the given session type.
type targetRequest struct {
	Shots       []shotRequest `json:"shots"`
	ImageWidth  float64       `json:"image_width"`
	ImageHeight float64       `json:"image_height"`
	SessionType string        `json:"session_type"`
	TS          string        `json:"ts"`
	Record      bool          `json:"record"`
}

func (t targetRequest) validate() error {
	if t.Record && strings.TrimSpace(t.SessionType) == "" {
		return errors.New("missing session_type; required when record is true")
	}
	if t.TS != "" {
		if _, err := time.Parse(time.RFC3339, t.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

func (t targetRequest) shots() []model.Shot {
	shots := make([]model.Shot, len(t.Shots))
	for i, s := range t.Shots {
		shots[i] = model.Shot{X: s.X, Y: s.Y}
	}
	return shots
}

// TargetsHandler handles target analysis and history requests.
type TargetsHandler struct {
	deps Dependencies
}

// NewTargetsHandler creates a new targets handler.
func NewTargetsHandler(deps Dependencies) *TargetsHandler {
	return &TargetsHandler{deps: deps}
}

// HandleTargets handles POST /targets (analyze, optionally record) and
// GET /targets (filtered history listing).
func (h *TargetsHandler) HandleTargets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *TargetsHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_target"

	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}

	if !req.Record {
		report, err := h.deps.AnalyzeTarget(r.Context(), req.shots(), req.ImageWidth, req.ImageHeight)
		if err != nil {
			h.writeAnalysisError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	session, err := model.ParseSessionType(req.SessionType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	ts := time.Now()
	if req.TS != "" {
		ts, _ = time.Parse(time.RFC3339, req.TS)
	}
	report, err := h.deps.RecordTarget(r.Context(), req.shots(), req.ImageWidth, req.ImageHeight, session, ts)
	if err != nil {
		h.writeAnalysisError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// writeAnalysisError maps invalid geometry to 400; everything else is a 500.
func (h *TargetsHandler) writeAnalysisError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, geometry.ErrInvalidGeometry) {
		writeError(w, http.StatusBadRequest, "invalid_geometry", Wrap(op, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}

func (h *TargetsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_targets"

	filter, sessions, err := historyFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	summaries, err := h.deps.History(r.Context(), filter, sessions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleTargetByID handles DELETE /targets/{id} and
// GET /targets/{id}/thumbnail.
func (h *TargetsHandler) HandleTargetByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.target_by_id"

	rest := strings.TrimPrefix(r.URL.Path, "/targets/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch {
	case r.Method == http.MethodDelete && sub == "":
		if err := h.deps.DeleteTarget(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && sub == "thumbnail":
		data, err := h.deps.Thumbnail(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		if data == nil {
			// Absent thumbnails are a display concern, not an error.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(data))
		_, _ = w.Write(data)
	default:
		http.NotFound(w, r)
	}
}
