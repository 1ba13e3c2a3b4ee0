package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/flowstate/internal/apperr"
	"github.com/starford/flowstate/internal/artifact"
	"github.com/starford/flowstate/internal/checksum"
	"github.com/starford/flowstate/internal/query"
	"github.com/starford/flowstate/internal/sse"
)

const maxParamsBytes = 64 << 10

// Handler holds API route handlers.
type Handler struct {
	disp   *query.Dispatcher
	cache  *artifact.Cache
	store  *artifact.Store
	broker *sse.Broker
	logger *slog.Logger
}

// NewHandler creates a new Handler. broker may be nil, in which case no
// events are published and /api/events is not mounted.
func NewHandler(disp *query.Dispatcher, cache *artifact.Cache, store *artifact.Store, broker *sse.Broker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{disp: disp, cache: cache, store: store, broker: broker, logger: logger}
}

// Artifact handles GET /correlations.json.
//
//	@Summary		Raw correlation artifact for the dashboard
//	@Tags			artifact
//	@Produce		json
//	@Param			If-None-Match	header		string	false	"Previously returned ETag"
//	@Success		200				{object}	models.Artifact
//	@Success		304
//	@Failure		404				{object}	ErrorResponse
//	@Router			/correlations.json [get]
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Raw()
	if err != nil {
		ae := apperr.From(err)
		if ae.Code == apperr.CodeDataNotFound {
			writeJSON(w, http.StatusNotFound, ae.Body())
			return
		}
		h.logger.Error("read artifact failed", slog.String("error", err.Error()))
		writeError(w, ae)
		return
	}

	etag := checksum.ETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if checksum.Matches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Operations handles GET /api/operations.
//
//	@Summary		List the query catalogue
//	@Tags			query
//	@Produce		json
//	@Success		200	{object}	OperationsResponse
//	@Router			/operations [get]
func (h *Handler) Operations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, OperationsResponse{Operations: h.disp.Catalogue()})
}

// Query handles POST /api/query/{operation}.
//
//	@Summary		Run one catalogue operation
//	@Tags			query
//	@Accept			json
//	@Produce		json
//	@Param			operation	path		string	true	"Operation name"	Enums(get_best_hours, get_flow_state_pattern, analyze_productivity, get_music_impact, predict_commits)
//	@Param			body		body		object	false	"Operation parameters"
//	@Success		200			{object}	object
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/query/{operation} [post]
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxParamsBytes))
	if err != nil {
		writeError(w, apperr.Wrap(err, apperr.CodeInvalidParameter,
			"Request body could not be read",
			"Send the parameters as a JSON object no larger than 64 KiB"))
		return
	}

	res, err := h.disp.CallName(r.Context(), chi.URLParam(r, "operation"), bytes.TrimSpace(raw))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Dashboard handles GET /api/dashboard.
//
//	@Summary		Dashboard location and metadata
//	@Tags			dashboard
//	@Produce		json
//	@Success		200	{object}	query.DashboardResult
//	@Router			/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.disp.Service().Dashboard(r.Context()))
}

// Status handles GET /api/status.
//
//	@Summary		Artifact cache status
//	@Tags			artifact
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

func (h *Handler) status() StatusResponse {
	resp := StatusResponse{Status: h.cache.Status()}
	if h.broker != nil {
		stats := h.broker.Stats()
		resp.Events = &stats
	}
	return resp
}

// Reload handles POST /api/reload.
//
//	@Summary		Reload the artifact from disk
//	@Tags			artifact
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, _ *http.Request) {
	snap, err := h.cache.Reload()
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("artifact reloaded",
		slog.String("snapshot", snap.ID.String()),
		slog.Int("timeline_days", len(snap.Artifact.Timeline)))
	if h.broker != nil {
		h.broker.PublishArtifact(sse.EventArtifactReloaded, sse.ArtifactInfo{
			Checksum:     snap.Checksum,
			SnapshotID:   snap.ID.String(),
			TimelineDays: len(snap.Artifact.Timeline),
		})
	}
	writeJSON(w, http.StatusOK, h.status())
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /health/ready. The process is ready once an artifact is loaded.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	state := h.cache.State()
	if state != artifact.StateLoaded {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", State: state.String()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", State: state.String()})
}
