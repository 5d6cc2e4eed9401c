package calendar

import (
	"context"
	"net/http"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

type FinnhubCalendar struct {
	client *finnhub.DefaultApiService
}

func NewFinnhubCalendar(apiKey string) *FinnhubCalendar {
	return newFinnhubCalendar(apiKey, &http.Client{Timeout: 30 * time.Second})
}

func newFinnhubCalendar(apiKey string, httpClient *http.Client) *FinnhubCalendar {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	cfg.HTTPClient = httpClient
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnhubCalendar{client: client}
}

func (c *FinnhubCalendar) Name() string {
	return "Finnhub"
}

// EarningsOn reports Finnhub's fiscal year and quarter through the same
// "Mon/YYYY" quarter-ending form the Nasdaq calendar uses.
func (c *FinnhubCalendar) EarningsOn(ctx context.Context, date time.Time) ([]Entry, error) {
	day := date.Format("2006-01-02")

	res, _, err := c.client.EarningsCalendar(ctx).From(day).To(day).Execute()
	if err != nil {
		return nil, err
	}

	releases := res.GetEarningsCalendar()
	entries := make([]Entry, 0, len(releases))
	for _, r := range releases {
		entries = append(entries, Entry{
			Symbol:              r.GetSymbol(),
			FiscalQuarterEnding: quarterEnding(int(r.GetYear()), int(r.GetQuarter())),
		})
	}

	return entries, nil
}
