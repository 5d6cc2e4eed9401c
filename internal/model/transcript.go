package model

import (
	"fmt"
	"time"
)

type Transcript struct {
	ID        int64
	Ticker    string
	Year      int
	Quarter   int
	Filename  string
	CreatedAt time.Time
}

// TranscriptFilename is the blob name an earnings-call transcript is stored under.
func TranscriptFilename(ticker string, year, quarter int) string {
	return fmt.Sprintf("%s_%d_Q%d_earnings_call.txt", ticker, year, quarter)
}
