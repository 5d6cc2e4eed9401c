package repository

import (
	"context"
	"database/sql"

	"github.com/iforaa/quartergate/internal/model"
)

type SummaryRepository struct {
	db TxDB
}

func NewSummaryRepository(db TxDB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) GetByPeriod(ctx context.Context, ticker string, year, quarter int) (*model.Summary, error) {
	var s model.Summary
	err := r.db.QueryRowContext(ctx, `
		SELECT id, ticker, year, quarter, filename, created_at
		FROM summaries
		WHERE ticker = $1 AND year = $2 AND quarter = $3
	`, ticker, year, quarter).Scan(&s.ID, &s.Ticker, &s.Year, &s.Quarter, &s.Filename, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &s, nil
}

// SaveWithSource inserts the summary row and its provenance link in one
// transaction. It reports false, writing nothing, when a summary for the
// period already exists.
func (r *SummaryRepository) SaveWithSource(ctx context.Context, summary *model.Summary, source model.SummarySource) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO summaries(ticker, year, quarter, filename, created_at)
		VALUES($1, $2, $3, $4, NOW())
		ON CONFLICT (ticker, year, quarter) DO NOTHING
		RETURNING id, created_at
	`, summary.Ticker, summary.Year, summary.Quarter, summary.Filename).Scan(&summary.ID, &summary.CreatedAt)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO summary_sources(summary_id, source_type, source_id)
		VALUES($1, $2, $3)
	`, summary.ID, source.SourceType, source.SourceID)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *SummaryRepository) GetSources(ctx context.Context, summaryID int64) ([]model.SummarySource, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT summary_id, source_type, source_id
		FROM summary_sources
		WHERE summary_id = $1
		ORDER BY source_type, source_id
	`, summaryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []model.SummarySource
	for rows.Next() {
		var s model.SummarySource
		if err := rows.Scan(&s.SummaryID, &s.SourceType, &s.SourceID); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}

func (r *SummaryRepository) GetSummaries(ctx context.Context, limit, offset int) ([]model.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker, year, quarter, filename, created_at
		FROM summaries
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func (r *SummaryRepository) GetSummaryTotal(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM summaries`).Scan(&total)
	return total, err
}

// GetOrphanSummaries returns summaries that have no provenance link, which
// only happens when a save sequence was interrupted outside a transaction.
func (r *SummaryRepository) GetOrphanSummaries(ctx context.Context) ([]model.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.ticker, s.year, s.quarter, s.filename, s.created_at
		FROM summaries s
		LEFT JOIN summary_sources ss ON ss.summary_id = s.id
		WHERE ss.summary_id IS NULL
		ORDER BY s.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]model.Summary, error) {
	var summaries []model.Summary
	for rows.Next() {
		var s model.Summary
		err := rows.Scan(&s.ID, &s.Ticker, &s.Year, &s.Quarter, &s.Filename, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}
