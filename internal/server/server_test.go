package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/app"
	"github.com/ternarybob/gapper/internal/cache"
	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/handlers"
	"github.com/ternarybob/gapper/internal/services/pipeline"
	"github.com/ternarybob/gapper/internal/storage/memory"
)

type panicPoller struct{}

func (panicPoller) Poll(context.Context) (*pipeline.Summary, error) {
	panic("poll exploded")
}

func newTestServer() *Server {
	config := common.NewDefaultConfig()
	logger := arbor.NewLogger()
	store := cache.NewStore(memory.NewPayloadStorage(), config.Cache, logger)

	application := &app.App{
		Config:         config,
		Logger:         logger,
		Store:          store,
		APIHandler:     handlers.NewAPIHandler(store, logger),
		PayloadHandler: handlers.NewPayloadHandler(store, logger),
		PollHandler:    handlers.NewPollHandler(panicPoller{}, 0, logger),
		HistoryHandler: handlers.NewHistoryHandler(nil, logger),
	}
	return New(application)
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/scores", http.StatusOK},
		{http.MethodGet, "/api/news", http.StatusOK},
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/version", http.StatusOK},
		{http.MethodGet, "/api/poll", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/runs", http.StatusServiceUnavailable},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodOptions, "/api/scores", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(s, tt.method, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer()

	var rec *httptest.ResponseRecorder
	require.NotPanics(t, func() {
		rec = serve(s, http.MethodPost, "/api/poll")
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
