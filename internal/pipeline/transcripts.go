package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iforaa/quartergate/internal/model"
	"github.com/iforaa/quartergate/pkg/blob"
	"github.com/iforaa/quartergate/pkg/transcript"
)

type TranscriptResolver struct {
	store    TranscriptStore
	provider transcript.Provider
	blobs    blob.Store
}

func NewTranscriptResolver(store TranscriptStore, provider transcript.Provider, blobs blob.Store) *TranscriptResolver {
	return &TranscriptResolver{store: store, provider: provider, blobs: blobs}
}

// Resolve returns the cached transcript for the period, fetching and storing
// it on a miss. A nil transcript with a nil error means none is available.
// The blob is uploaded before the row is inserted, so a row always points at
// an uploaded body.
func (r *TranscriptResolver) Resolve(ctx context.Context, ticker string, year, quarter int) (*model.Transcript, string, error) {
	existing, err := r.store.GetByPeriod(ctx, ticker, year, quarter)
	if err != nil {
		return nil, "", fatal("get transcript", err)
	}

	if existing != nil {
		return r.fromCache(ctx, existing)
	}

	text, ok := r.fetch(ctx, ticker, year, quarter)
	if !ok {
		return nil, "", nil
	}

	t := &model.Transcript{
		Ticker:   ticker,
		Year:     year,
		Quarter:  quarter,
		Filename: model.TranscriptFilename(ticker, year, quarter),
	}

	if err := r.blobs.Upload(ctx, t.Filename, text); err != nil {
		return nil, "", fmt.Errorf("upload transcript %s: %w", t.Filename, err)
	}

	saved, err := r.store.Save(ctx, t)
	if err != nil {
		return nil, "", fatal("save transcript", err)
	}

	if !saved {
		// Another run inserted the same period first.
		t, err = r.store.GetByPeriod(ctx, ticker, year, quarter)
		if err != nil {
			return nil, "", fatal("get transcript", err)
		}
		if t == nil {
			return nil, "", fmt.Errorf("transcript %s %d Q%d missing after insert conflict", ticker, year, quarter)
		}
	}

	slog.Info("Transcript stored", "ticker", ticker, "year", year, "quarter", quarter, "transcript_id", t.ID)
	return t, text, nil
}

func (r *TranscriptResolver) fromCache(ctx context.Context, t *model.Transcript) (*model.Transcript, string, error) {
	text, err := r.blobs.Download(ctx, t.Filename)
	if err == nil {
		slog.Info("Transcript cache hit", "ticker", t.Ticker, "year", t.Year, "quarter", t.Quarter)
		return t, text, nil
	}

	if !errors.Is(err, blob.ErrNotFound) {
		return nil, "", fmt.Errorf("download transcript %s: %w", t.Filename, err)
	}

	slog.Warn("Transcript blob missing, refetching", "ticker", t.Ticker, "filename", t.Filename)

	text, ok := r.fetch(ctx, t.Ticker, t.Year, t.Quarter)
	if !ok {
		return nil, "", nil
	}

	if err := r.blobs.Upload(ctx, t.Filename, text); err != nil {
		return nil, "", fmt.Errorf("upload transcript %s: %w", t.Filename, err)
	}

	return t, text, nil
}

func (r *TranscriptResolver) fetch(ctx context.Context, ticker string, year, quarter int) (string, bool) {
	res := r.provider.Fetch(ctx, ticker, year, quarter)

	switch res.Kind {
	case transcript.Found:
		return res.Text, true
	case transcript.Absent:
		slog.Info("No transcript available", "ticker", ticker, "year", year, "quarter", quarter, "provider", r.provider.Name())
	default:
		slog.Warn("Transcript fetch failed", "ticker", ticker, "year", year, "quarter", quarter, "provider", r.provider.Name(), "error", res.Err)
	}

	return "", false
}
