package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/iforaa/quartergate/pkg/blob"
	"github.com/iforaa/quartergate/pkg/calendar"
	"github.com/iforaa/quartergate/pkg/llm"
	"github.com/iforaa/quartergate/pkg/transcript"
)

const DefaultTickerDelay = 5 * time.Second

type Detector interface {
	Detect(ctx context.Context, reference time.Time, max int) ([]calendar.Symbol, error)
}

type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// Locker keeps two runs from overlapping.
type Locker interface {
	Acquire(ctx context.Context) (string, error)
	Release(ctx context.Context, token string) error
}

type Deps struct {
	Detector    Detector
	Stores      StoreOpener
	Transcripts transcript.Provider
	Completer   llm.Completer
	Blobs       blob.Store
	Publisher   Publisher
	// Locker is optional.
	Locker Locker
	// Delay between tickers; zero means DefaultTickerDelay, negative means none.
	Delay time.Duration
}

type Stats struct {
	Detected      int
	Processed     int
	Published     int
	PublishFailed int
	Skipped       int
	Failed        int
}

type Runner struct {
	detector    Detector
	stores      StoreOpener
	transcripts transcript.Provider
	completer   llm.Completer
	blobs       blob.Store
	publisher   Publisher
	locker      Locker
	delay       time.Duration
	now         func() time.Time
}

func NewRunner(deps Deps) *Runner {
	delay := deps.Delay
	if delay == 0 {
		delay = DefaultTickerDelay
	}

	return &Runner{
		detector:    deps.Detector,
		stores:      deps.Stores,
		transcripts: deps.Transcripts,
		completer:   deps.Completer,
		blobs:       deps.Blobs,
		publisher:   deps.Publisher,
		locker:      deps.Locker,
		delay:       delay,
		now:         time.Now,
	}
}

// Run processes the earnings reported daysAgo days before today, at most
// maxSymbols of them, strictly one after another in calendar order. A ticker
// that fails is logged and skipped. A database failure aborts the batch with
// an error wrapping ErrFatal. The run's connection is released on every path.
func (r *Runner) Run(ctx context.Context, daysAgo, maxSymbols int) (Stats, error) {
	var stats Stats
	log := slog.With("run_id", uuid.NewString())

	if r.locker != nil {
		token, err := r.locker.Acquire(ctx)
		if err != nil {
			return stats, fmt.Errorf("acquire run lock: %w", err)
		}
		defer func() {
			if err := r.locker.Release(context.WithoutCancel(ctx), token); err != nil {
				log.Warn("Failed to release run lock", "error", err)
			}
		}()
	}

	reference := r.now().AddDate(0, 0, -daysAgo)
	symbols, err := r.detector.Detect(ctx, reference, maxSymbols)
	if err != nil {
		return stats, fmt.Errorf("detect earnings: %w", err)
	}

	stats.Detected = len(symbols)
	log.Info("Earnings detected", "date", calendar.Midnight(reference).Format("2006-01-02"), "count", len(symbols))

	if len(symbols) == 0 {
		return stats, nil
	}

	stores, conn, err := r.stores.OpenStores(ctx)
	if err != nil {
		return stats, fatal("open database connection", err)
	}
	defer conn.Close()

	transcripts := NewTranscriptResolver(stores.Transcripts, r.transcripts, r.blobs)
	summaries := NewSummaryResolver(stores.Summaries, transcripts, r.completer, r.blobs)

	for i, sym := range symbols {
		if i > 0 {
			if err := sleep(ctx, r.delay); err != nil {
				return stats, err
			}
		}

		stats.Processed++
		tickerLog := log.With("ticker", sym.Ticker, "year", sym.FiscalYear, "quarter", sym.FiscalQuarter)

		text, found, err := summaries.Resolve(ctx, sym.Ticker, sym.FiscalYear, sym.FiscalQuarter)
		if errors.Is(err, ErrFatal) {
			tickerLog.Error("Aborting run", "error", err)
			return stats, err
		}
		if err != nil {
			stats.Failed++
			tickerLog.Error("Ticker failed", "error", err)
			continue
		}
		if !found {
			stats.Skipped++
			tickerLog.Info("Ticker skipped, no transcript")
			continue
		}

		if err := r.publisher.Publish(ctx, FormatMessage(sym.Ticker, text)); err != nil {
			stats.PublishFailed++
			tickerLog.Error("Failed to publish summary", "error", err)
			continue
		}

		stats.Published++
		tickerLog.Info("Summary published")
	}

	log.Info("Run finished",
		"processed", stats.Processed,
		"published", stats.Published,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"publish_failed", stats.PublishFailed,
	)
	return stats, nil
}

func FormatMessage(ticker, summary string) string {
	return fmt.Sprintf("📢 New Update for Ticker: %s\n\n%s", ticker, summary)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
