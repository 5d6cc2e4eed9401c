package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iforaa/quartergate/internal/model"
	"github.com/iforaa/quartergate/pkg/blob"
	"github.com/iforaa/quartergate/pkg/llm"
)

type SummaryResolver struct {
	store       SummaryStore
	transcripts *TranscriptResolver
	completer   llm.Completer
	blobs       blob.Store
}

func NewSummaryResolver(store SummaryStore, transcripts *TranscriptResolver, completer llm.Completer, blobs blob.Store) *SummaryResolver {
	return &SummaryResolver{store: store, transcripts: transcripts, completer: completer, blobs: blobs}
}

// Resolve returns the summary for the period. A cached summary short-circuits
// all upstream work. found is false when no transcript exists, in which case
// nothing was written.
func (r *SummaryResolver) Resolve(ctx context.Context, ticker string, year, quarter int) (text string, found bool, err error) {
	existing, err := r.store.GetByPeriod(ctx, ticker, year, quarter)
	if err != nil {
		return "", false, fatal("get summary", err)
	}

	if existing != nil {
		return r.fromCache(ctx, existing)
	}

	source, text, err := r.summarize(ctx, ticker, year, quarter)
	if err != nil || source == nil {
		return "", false, err
	}

	s := &model.Summary{
		Ticker:   ticker,
		Year:     year,
		Quarter:  quarter,
		Filename: model.SummaryFilename(ticker, year, quarter),
	}
	link := model.SummarySource{SourceType: model.SourceTypeTranscript, SourceID: source.ID}

	saved, err := r.store.SaveWithSource(ctx, s, link)
	if err != nil {
		return "", false, fatal("save summary", err)
	}
	if !saved {
		slog.Warn("Summary already saved by another run", "ticker", ticker, "year", year, "quarter", quarter)
		return r.winnerText(ctx, s.Filename, text)
	}

	if err := r.blobs.Upload(ctx, s.Filename, text); err != nil {
		return "", false, fmt.Errorf("upload summary %s: %w", s.Filename, err)
	}

	slog.Info("Summary stored", "ticker", ticker, "year", year, "quarter", quarter, "summary_id", s.ID, "transcript_id", source.ID)
	return text, true, nil
}

func (r *SummaryResolver) fromCache(ctx context.Context, s *model.Summary) (string, bool, error) {
	text, err := r.blobs.Download(ctx, s.Filename)
	if err == nil {
		slog.Info("Summary cache hit", "ticker", s.Ticker, "year", s.Year, "quarter", s.Quarter)
		return text, true, nil
	}

	if !errors.Is(err, blob.ErrNotFound) {
		return "", false, fmt.Errorf("download summary %s: %w", s.Filename, err)
	}

	// The row survived but its body did not; rebuild the body only.
	slog.Warn("Summary blob missing, regenerating", "ticker", s.Ticker, "filename", s.Filename)

	source, text, err := r.summarize(ctx, s.Ticker, s.Year, s.Quarter)
	if err != nil || source == nil {
		return "", false, err
	}

	if err := r.blobs.Upload(ctx, s.Filename, text); err != nil {
		return "", false, fmt.Errorf("upload summary %s: %w", s.Filename, err)
	}

	return text, true, nil
}

// winnerText prefers the body stored by the run that won the insert. Our own
// text is returned when that body is not uploaded yet, and the blob is left
// for the winner to write.
func (r *SummaryResolver) winnerText(ctx context.Context, filename, own string) (string, bool, error) {
	stored, err := r.blobs.Download(ctx, filename)
	if err == nil {
		return stored, true, nil
	}

	if errors.Is(err, blob.ErrNotFound) {
		return own, true, nil
	}

	return "", false, fmt.Errorf("download summary %s: %w", filename, err)
}

func (r *SummaryResolver) summarize(ctx context.Context, ticker string, year, quarter int) (*model.Transcript, string, error) {
	source, transcriptText, err := r.transcripts.Resolve(ctx, ticker, year, quarter)
	if err != nil || source == nil {
		return nil, "", err
	}

	text, err := r.completer.Complete(ctx, llm.EarningsPrompt(ticker, transcriptText))
	if err != nil {
		return nil, "", fmt.Errorf("summarize %s with %s: %w", ticker, r.completer.Model(), err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("summarize %s with %s: empty response", ticker, r.completer.Model())
	}

	return source, text, nil
}
