package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iforaa/quartergate/internal/model"
)

type SummaryStore interface {
	GetSummaries(ctx context.Context, limit, offset int) ([]model.Summary, error)
	GetSummaryTotal(ctx context.Context) (int, error)
	GetByPeriod(ctx context.Context, ticker string, year, quarter int) (*model.Summary, error)
	GetSources(ctx context.Context, summaryID int64) ([]model.SummarySource, error)
	GetOrphanSummaries(ctx context.Context) ([]model.Summary, error)
}

type SummaryHandler struct {
	repository SummaryStore
}

func NewSummaryHandler(repository SummaryStore) *SummaryHandler {
	return &SummaryHandler{repository: repository}
}

func (h *SummaryHandler) GetSummaries(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)
	ctx := c.Request.Context()

	summaries, err := h.repository.GetSummaries(ctx, limit, offset)
	if err != nil {
		slog.Error("error fetching summaries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.repository.GetSummaryTotal(ctx)
	if err != nil {
		slog.Error("error fetching summary total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := SummariesResponse{
		Summaries: make([]SummaryResponse, 0, len(summaries)),
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}
	for _, s := range summaries {
		res.Summaries = append(res.Summaries, toSummaryResponse(s))
	}

	c.JSON(http.StatusOK, res)
}

// GetSummary serves /summaries/:ticker/:year/:quarter with its provenance.
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1900 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}

	quarter, err := strconv.Atoi(c.Param("quarter"))
	if err != nil || quarter < 1 || quarter > 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quarter"})
		return
	}

	ctx := c.Request.Context()

	summary, err := h.repository.GetByPeriod(ctx, ticker, year, quarter)
	if err != nil {
		slog.Error("error fetching summary", "error", err, "ticker", ticker, "year", year, "quarter", quarter)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Summary not found"})
		return
	}

	sources, err := h.repository.GetSources(ctx, summary.ID)
	if err != nil {
		slog.Error("error fetching summary sources", "error", err, "summary_id", summary.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := SummaryDetailResponse{
		SummaryResponse: toSummaryResponse(*summary),
		Sources:         make([]SourceResponse, 0, len(sources)),
	}
	for _, s := range sources {
		res.Sources = append(res.Sources, SourceResponse{Type: s.SourceType, ID: s.SourceID})
	}

	c.JSON(http.StatusOK, res)
}

// GetConsistency lists summaries left without a source link.
func (h *SummaryHandler) GetConsistency(c *gin.Context) {
	orphans, err := h.repository.GetOrphanSummaries(c.Request.Context())
	if err != nil {
		slog.Error("error fetching orphan summaries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := ConsistencyResponse{
		Consistent: len(orphans) == 0,
		Orphans:    make([]SummaryResponse, 0, len(orphans)),
	}
	for _, s := range orphans {
		res.Orphans = append(res.Orphans, toSummaryResponse(s))
	}

	c.JSON(http.StatusOK, res)
}
