package model

import (
	"fmt"
	"time"
)

const SourceTypeTranscript = "transcript"

type Summary struct {
	ID        int64
	Ticker    string
	Year      int
	Quarter   int
	Filename  string
	CreatedAt time.Time
}

// SummarySource links a summary to the record it was generated from.
type SummarySource struct {
	SummaryID  int64
	SourceType string
	SourceID   int64
}

func SummaryFilename(ticker string, year, quarter int) string {
	return fmt.Sprintf("%s_%d_Q%d_summary.txt", ticker, year, quarter)
}
