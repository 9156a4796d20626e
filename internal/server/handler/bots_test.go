package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkinvest/botboard/internal/domain"
)

type stubBotReader struct {
	summary domain.BotSummary
	bots    map[string]domain.BotMetrics
	err     error
}

func (s *stubBotReader) Summary(context.Context) (domain.BotSummary, error) {
	return s.summary, s.err
}

func (s *stubBotReader) Bot(_ context.Context, id string) (domain.BotMetrics, error) {
	if s.err != nil {
		return domain.BotMetrics{}, s.err
	}
	m, ok := s.bots[id]
	if !ok {
		return domain.BotMetrics{}, domain.ErrNotFound
	}
	return m, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBotsList(t *testing.T) {
	reader := &stubBotReader{
		summary: domain.BotSummary{
			Strategies: []domain.BotMetrics{{ID: "a", Live: true}},
			Timestamp:  time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	h := NewBotsHandler(reader, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/bots", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, s-maxage=60, stale-while-revalidate=30", rec.Header().Get("Cache-Control"))

	var got domain.BotSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Strategies, 1)
	assert.Equal(t, "a", got.Strategies[0].ID)
	assert.True(t, got.Strategies[0].Live)
}

func TestBotsGet(t *testing.T) {
	reader := &stubBotReader{
		bots: map[string]domain.BotMetrics{"a": {ID: "a", CurrentValue: 1000}},
	}
	h := NewBotsHandler(reader, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bots/{id}", h.Get)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bots/a", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.BotMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1000.0, got.CurrentValue)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bots/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
