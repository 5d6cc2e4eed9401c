package handler

import (
	"time"

	"github.com/iforaa/quartergate/internal/model"
)

type TranscriptResponse struct {
	ID        int64  `json:"id"`
	Ticker    string `json:"ticker"`
	Year      int    `json:"year"`
	Quarter   int    `json:"quarter"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"created_at"`
}

type TranscriptsResponse struct {
	Transcripts []TranscriptResponse `json:"transcripts"`
	Total       int                  `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

type SummaryResponse struct {
	ID        int64  `json:"id"`
	Ticker    string `json:"ticker"`
	Year      int    `json:"year"`
	Quarter   int    `json:"quarter"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"created_at"`
}

type SummariesResponse struct {
	Summaries []SummaryResponse `json:"summaries"`
	Total     int               `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

type SourceResponse struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

type SummaryDetailResponse struct {
	SummaryResponse
	Sources []SourceResponse `json:"sources"`
}

type ConsistencyResponse struct {
	Consistent bool              `json:"consistent"`
	Orphans    []SummaryResponse `json:"orphan_summaries"`
}

func toTranscriptResponse(t model.Transcript) TranscriptResponse {
	return TranscriptResponse{
		ID:        t.ID,
		Ticker:    t.Ticker,
		Year:      t.Year,
		Quarter:   t.Quarter,
		Filename:  t.Filename,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func toSummaryResponse(s model.Summary) SummaryResponse {
	return SummaryResponse{
		ID:        s.ID,
		Ticker:    s.Ticker,
		Year:      s.Year,
		Quarter:   s.Quarter,
		Filename:  s.Filename,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}
