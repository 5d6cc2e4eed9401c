package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/iforaa/quartergate/internal/model"
)

type fakeSummaryStore struct {
	summaries []model.Summary
	total     int
	summary   *model.Summary
	sources   []model.SummarySource
	orphans   []model.Summary
	err       error
	ticker    string
}

func (f *fakeSummaryStore) GetSummaries(ctx context.Context, limit, offset int) ([]model.Summary, error) {
	return f.summaries, f.err
}

func (f *fakeSummaryStore) GetSummaryTotal(ctx context.Context) (int, error) {
	return f.total, f.err
}

func (f *fakeSummaryStore) GetByPeriod(ctx context.Context, ticker string, year, quarter int) (*model.Summary, error) {
	f.ticker = ticker
	return f.summary, f.err
}

func (f *fakeSummaryStore) GetSources(ctx context.Context, summaryID int64) ([]model.SummarySource, error) {
	return f.sources, f.err
}

func (f *fakeSummaryStore) GetOrphanSummaries(ctx context.Context) ([]model.Summary, error) {
	return f.orphans, f.err
}

func newTestSummaryRouter(store SummaryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSummaryHandler(store)
	r.GET("/summaries", h.GetSummaries)
	r.GET("/summaries/:ticker/:year/:quarter", h.GetSummary)
	r.GET("/consistency", h.GetConsistency)
	return r
}

func TestGetSummaries_Empty(t *testing.T) {
	r := newTestSummaryRouter(&fakeSummaryStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/summaries", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res SummariesResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 0, len(res.Summaries))
	assert.Equal(t, 20, res.Limit)
}

func TestGetSummaries_WithResults(t *testing.T) {
	store := &fakeSummaryStore{
		summaries: []model.Summary{
			{ID: 2, Ticker: "MSFT", Year: 2024, Quarter: 2, Filename: "MSFT_2024_Q2_summary.txt"},
			{ID: 1, Ticker: "AAPL", Year: 2024, Quarter: 3, Filename: "AAPL_2024_Q3_summary.txt"},
		},
		total: 2,
	}
	r := newTestSummaryRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/summaries", nil)
	r.ServeHTTP(w, req)

	var res SummariesResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "MSFT", res.Summaries[0].Ticker)
	assert.Equal(t, "AAPL_2024_Q3_summary.txt", res.Summaries[1].Filename)
}

func TestGetSummaries_DBError(t *testing.T) {
	r := newTestSummaryRouter(&fakeSummaryStore{err: errors.New("DB down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/summaries", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetSummary_WithSources(t *testing.T) {
	store := &fakeSummaryStore{
		summary: &model.Summary{ID: 7, Ticker: "AAPL", Year: 2024, Quarter: 3, Filename: "AAPL_2024_Q3_summary.txt"},
		sources: []model.SummarySource{{SummaryID: 7, SourceType: model.SourceTypeTranscript, SourceID: 4}},
	}
	r := newTestSummaryRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/summaries/aapl/2024/3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AAPL", store.ticker)

	var res SummaryDetailResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, int64(7), res.ID)
	assert.Equal(t, []SourceResponse{{Type: "transcript", ID: 4}}, res.Sources)
}

func TestGetSummary_NotFound(t *testing.T) {
	r := newTestSummaryRouter(&fakeSummaryStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/summaries/AAPL/2024/3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSummary_InvalidQuarter(t *testing.T) {
	r := newTestSummaryRouter(&fakeSummaryStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/summaries/AAPL/2024/5", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSummary_InvalidYear(t *testing.T) {
	r := newTestSummaryRouter(&fakeSummaryStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/summaries/AAPL/next/1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConsistency_Clean(t *testing.T) {
	r := newTestSummaryRouter(&fakeSummaryStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/consistency", nil)
	r.ServeHTTP(w, req)

	var res ConsistencyResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, true, res.Consistent)
	assert.Equal(t, 0, len(res.Orphans))
}

func TestGetConsistency_ReportsOrphans(t *testing.T) {
	store := &fakeSummaryStore{
		orphans: []model.Summary{{ID: 9, Ticker: "TSLA", Year: 2024, Quarter: 3}},
	}
	r := newTestSummaryRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/consistency", nil)
	r.ServeHTTP(w, req)

	var res ConsistencyResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, false, res.Consistent)
	assert.Equal(t, "TSLA", res.Orphans[0].Ticker)
}
