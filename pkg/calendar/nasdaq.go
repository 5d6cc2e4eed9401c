package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DefaultNasdaqURL = "https://api.nasdaq.com/api"

type NasdaqCalendar struct {
	baseURL    string
	httpClient *http.Client
}

func NewNasdaqCalendar() *NasdaqCalendar {
	return &NasdaqCalendar{
		baseURL:    DefaultNasdaqURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *NasdaqCalendar) Name() string {
	return "Nasdaq"
}

func (c *NasdaqCalendar) EarningsOn(ctx context.Context, date time.Time) ([]Entry, error) {
	url := fmt.Sprintf("%s/calendar/earnings?date=%s", c.baseURL, date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// The endpoint rejects requests that do not look like a browser.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nasdaq fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nasdaq fetch: status %d", resp.StatusCode)
	}

	var raw nasdaqResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("nasdaq decode: %w", err)
	}

	if raw.Data == nil {
		return []Entry{}, nil
	}

	entries := make([]Entry, 0, len(raw.Data.Rows))
	for _, row := range raw.Data.Rows {
		entries = append(entries, Entry{
			Symbol:              strings.TrimSpace(row.Symbol),
			Name:                row.Name,
			FiscalQuarterEnding: row.FiscalQuarterEnding,
		})
	}

	return entries, nil
}

type nasdaqResponse struct {
	Data *nasdaqData `json:"data"`
}

type nasdaqData struct {
	Rows []nasdaqRow `json:"rows"`
}

type nasdaqRow struct {
	Symbol              string `json:"symbol"`
	Name                string `json:"name"`
	FiscalQuarterEnding string `json:"fiscalQuarterEnding"`
}
