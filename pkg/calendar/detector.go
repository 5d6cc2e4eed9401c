package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Symbol is a ticker reporting earnings for a fiscal period.
type Symbol struct {
	Ticker        string
	FiscalYear    int
	FiscalQuarter int
}

type Detector struct {
	calendar Calendar
}

func NewDetector(calendar Calendar) *Detector {
	return &Detector{calendar: calendar}
}

// Detect returns the symbols reporting on the reference date in calendar
// order. Entries whose fiscal period cannot be parsed are logged and left
// out. At most max symbols are returned, so a max of zero or less yields none
// without querying the calendar.
func (d *Detector) Detect(ctx context.Context, reference time.Time, max int) ([]Symbol, error) {
	if max <= 0 {
		return []Symbol{}, nil
	}

	day := Midnight(reference)

	entries, err := d.calendar.EarningsOn(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("%s earnings calendar for %s: %w", d.calendar.Name(), day.Format("2006-01-02"), err)
	}

	symbols := make([]Symbol, 0, len(entries))
	for _, e := range entries {
		if e.Symbol == "" {
			continue
		}

		year, quarter, err := ParseFiscalQuarter(e.FiscalQuarterEnding)
		if err != nil {
			slog.Warn("skipping entry with unparseable fiscal period", "ticker", e.Symbol, "fiscal_quarter_ending", e.FiscalQuarterEnding, "error", err)
			continue
		}

		symbols = append(symbols, Symbol{Ticker: e.Symbol, FiscalYear: year, FiscalQuarter: quarter})
		if len(symbols) == max {
			break
		}
	}

	return symbols, nil
}

func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
