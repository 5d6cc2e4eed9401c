package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iforaa/quartergate/internal/model"
)

type TranscriptStore interface {
	GetTranscripts(ctx context.Context, limit, offset int) ([]model.Transcript, error)
	GetTranscriptTotal(ctx context.Context) (int, error)
}

type TranscriptHandler struct {
	repository TranscriptStore
}

func NewTranscriptHandler(repository TranscriptStore) *TranscriptHandler {
	return &TranscriptHandler{repository: repository}
}

func (h *TranscriptHandler) GetTranscripts(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)
	ctx := c.Request.Context()

	transcripts, err := h.repository.GetTranscripts(ctx, limit, offset)
	if err != nil {
		slog.Error("error fetching transcripts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.repository.GetTranscriptTotal(ctx)
	if err != nil {
		slog.Error("error fetching transcript total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := TranscriptsResponse{
		Transcripts: make([]TranscriptResponse, 0, len(transcripts)),
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	}
	for _, t := range transcripts {
		res.Transcripts = append(res.Transcripts, toTranscriptResponse(t))
	}

	c.JSON(http.StatusOK, res)
}

func (h *TranscriptHandler) GetHealth(c *gin.Context) {
	_, err := h.repository.GetTranscriptTotal(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
