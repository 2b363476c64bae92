package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/cache"
	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/models"
)

// PayloadHandler serves the cached scores and news payloads
type PayloadHandler struct {
	store  *cache.Store
	logger arbor.ILogger
}

// NewPayloadHandler creates a new PayloadHandler
func NewPayloadHandler(store *cache.Store, logger arbor.ILogger) *PayloadHandler {
	return &PayloadHandler{
		store:  store,
		logger: logger,
	}
}

// ScoresHandler handles GET /api/scores. ?decision filters by bucket.
func (h *PayloadHandler) ScoresHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	payload := h.store.Scores(r.Context())
	if decision := strings.ToUpper(r.URL.Query().Get("decision")); decision != "" {
		filtered := make([]models.ScoredCandidate, 0, len(payload.Items))
		for _, item := range payload.Items {
			if string(item.Decision) == decision {
				filtered = append(filtered, item)
			}
		}
		payload.Items = filtered
	}

	WriteJSON(w, http.StatusOK, payload)
}

// NewsHandler handles GET /api/news. ?ticker filters to one symbol.
func (h *PayloadHandler) NewsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	payload := h.store.News(r.Context())
	if ticker := common.NormalizeSymbol(r.URL.Query().Get("ticker")); ticker != "" {
		filtered := make([]models.NewsItem, 0)
		for _, item := range payload.Items {
			if item.Ticker == ticker {
				filtered = append(filtered, item)
			}
		}
		payload.Items = filtered
	}

	WriteJSON(w, http.StatusOK, payload)
}
