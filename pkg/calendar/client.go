package calendar

import (
	"context"
	"time"
)

// Entry is one company reporting earnings on a calendar day.
type Entry struct {
	Symbol              string
	Name                string
	FiscalQuarterEnding string
}

type Calendar interface {
	EarningsOn(ctx context.Context, date time.Time) ([]Entry, error)
	Name() string
}
