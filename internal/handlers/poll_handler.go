package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/services/pipeline"
)

// Poller runs one poll cycle
type Poller interface {
	Poll(ctx context.Context) (*pipeline.Summary, error)
}

// PollHandler lets an external scheduler trigger a cycle
type PollHandler struct {
	poller  Poller
	timeout time.Duration
	logger  arbor.ILogger
}

// NewPollHandler creates a new PollHandler. A zero timeout uses two minutes.
func NewPollHandler(poller Poller, timeout time.Duration, logger arbor.ILogger) *PollHandler {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &PollHandler{
		poller:  poller,
		timeout: timeout,
		logger:  logger,
	}
}

// PollHandler handles POST /api/poll and returns the cycle summary
func (h *PollHandler) PollHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	// The cycle outlives a disconnected client
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
	defer cancel()

	summary, err := h.poller.Poll(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Triggered poll failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}
