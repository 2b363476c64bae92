package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/interfaces"
)

// HistoryHandler serves archived score runs. archive may be nil when the
// archive is disabled.
type HistoryHandler struct {
	archive interfaces.ArchiveStorage
	logger  arbor.ILogger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(archive interfaces.ArchiveStorage, logger arbor.ILogger) *HistoryHandler {
	return &HistoryHandler{
		archive: archive,
		logger:  logger,
	}
}

func (h *HistoryHandler) available(w http.ResponseWriter) bool {
	if h.archive == nil {
		WriteError(w, http.StatusServiceUnavailable, "Archive is disabled")
		return false
	}
	return true
}

// RunsHandler handles GET /api/runs
func (h *HistoryHandler) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) || !h.available(w) {
		return
	}

	runs, err := h.archive.ListRuns(r.Context(), GetLimitParam(r, 20, 200))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list runs")
		WriteError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	WriteJSON(w, http.StatusOK, runs)
}

// RunHandler handles GET /api/runs/{id}
func (h *HistoryHandler) RunHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) || !h.available(w) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	run, err := h.archive.GetRun(r.Context(), id)
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("run_id", id).Msg("Failed to get run")
		WriteError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	WriteJSON(w, http.StatusOK, run)
}

// TickerHistoryHandler handles GET /api/history?ticker=ABC
func (h *HistoryHandler) TickerHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) || !h.available(w) {
		return
	}

	ticker := common.NormalizeSymbol(r.URL.Query().Get("ticker"))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	history, err := h.archive.TickerHistory(r.Context(), ticker, GetLimitParam(r, 50, 500))
	if err != nil {
		h.logger.Error().Err(err).Str("ticker", ticker).Msg("Failed to read ticker history")
		WriteError(w, http.StatusInternalServerError, "Failed to read ticker history")
		return
	}
	WriteJSON(w, http.StatusOK, history)
}
