package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/cache"
	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/models"
	"github.com/ternarybob/gapper/internal/services/pipeline"
	"github.com/ternarybob/gapper/internal/storage/memory"
)

var generated = time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	return cache.NewStore(memory.NewPayloadStorage(), common.NewDefaultConfig().Cache, arbor.NewLogger())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) models.CachePayload[T] {
	t.Helper()
	var payload models.CachePayload[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestScoresHandler_NotYetProduced(t *testing.T) {
	h := NewPayloadHandler(newStore(t), arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.ScoresHandler(rec, httptest.NewRequest(http.MethodGet, "/api/scores", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"generatedAt":null,"items":[]}`, rec.Body.String())
}

func TestScoresHandler_FiltersByDecision(t *testing.T) {
	store := newStore(t)
	_, err := store.SetScores(context.Background(), models.NewPayload(generated, []models.ScoredCandidate{
		{StockSnapshot: models.StockSnapshot{Ticker: "AAA"}, ActionScore: 90, Decision: models.DecisionTrade},
		{StockSnapshot: models.StockSnapshot{Ticker: "BBB"}, ActionScore: 20, Decision: models.DecisionSkip},
	}))
	require.NoError(t, err)
	h := NewPayloadHandler(store, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.ScoresHandler(rec, httptest.NewRequest(http.MethodGet, "/api/scores?decision=trade", nil))

	payload := decode[models.ScoredCandidate](t, rec)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "AAA", payload.Items[0].Ticker)
	require.NotNil(t, payload.GeneratedAt)
	assert.True(t, generated.Equal(*payload.GeneratedAt))
}

func TestNewsHandler_FiltersByTicker(t *testing.T) {
	store := newStore(t)
	_, err := store.SetNews(context.Background(), models.NewPayload(generated, []models.NewsItem{
		{Ticker: "AAA", Headline: "AAA headline one"},
		{Ticker: "BBB", Headline: "BBB headline one"},
	}))
	require.NoError(t, err)
	h := NewPayloadHandler(store, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.NewsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/news?ticker=bbb", nil))

	payload := decode[models.NewsItem](t, rec)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "BBB", payload.Items[0].Ticker)
}

func TestPayloadHandler_RejectsPost(t *testing.T) {
	h := NewPayloadHandler(newStore(t), arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.NewsHandler(rec, httptest.NewRequest(http.MethodPost, "/api/news", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type fakePoller struct {
	summary *pipeline.Summary
	err     error
}

func (p fakePoller) Poll(context.Context) (*pipeline.Summary, error) {
	return p.summary, p.err
}

func TestPollHandler(t *testing.T) {
	h := NewPollHandler(fakePoller{summary: &pipeline.Summary{CycleID: "cycle-1", Candidates: 3}}, time.Second, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.PollHandler(rec, httptest.NewRequest(http.MethodPost, "/api/poll", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var summary pipeline.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "cycle-1", summary.CycleID)
	assert.Equal(t, 3, summary.Candidates)
}

func TestPollHandler_Failure(t *testing.T) {
	h := NewPollHandler(fakePoller{err: errors.New("cache down")}, 0, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.PollHandler(rec, httptest.NewRequest(http.MethodPost, "/api/poll", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	h.PollHandler(rec, httptest.NewRequest(http.MethodGet, "/api/poll", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHistoryHandler_ArchiveDisabled(t *testing.T) {
	h := NewHistoryHandler(nil, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.RunsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	store := newStore(t)
	_, err := store.SetScores(context.Background(), models.NewPayload[models.ScoredCandidate](generated, nil))
	require.NoError(t, err)
	h := NewAPIHandler(store, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2026-10-19T14:00:00Z", body["scores"])
	assert.Nil(t, body["news"])
}

func TestGetLimitParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"?limit=5", 5},
		{"?limit=-1", 20},
		{"?limit=abc", 20},
		{"?limit=1000", 200},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/runs"+tt.query, nil)
		assert.Equal(t, tt.want, GetLimitParam(r, 20, 200), tt.query)
	}
}
