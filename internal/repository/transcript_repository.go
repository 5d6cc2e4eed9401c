package repository

import (
	"context"
	"database/sql"

	"github.com/iforaa/quartergate/internal/model"
)

type TranscriptRepository struct {
	db DBTX
}

func NewTranscriptRepository(db DBTX) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

func (r *TranscriptRepository) GetByPeriod(ctx context.Context, ticker string, year, quarter int) (*model.Transcript, error) {
	var t model.Transcript
	err := r.db.QueryRowContext(ctx, `
		SELECT id, ticker, year, quarter, filename, created_at
		FROM transcripts
		WHERE ticker = $1 AND year = $2 AND quarter = $3
	`, ticker, year, quarter).Scan(&t.ID, &t.Ticker, &t.Year, &t.Quarter, &t.Filename, &t.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &t, nil
}

// Save inserts the transcript row. It reports false when a row for the same
// period already exists, in which case the transcript is left untouched.
func (r *TranscriptRepository) Save(ctx context.Context, t *model.Transcript) (bool, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transcripts(ticker, year, quarter, filename, created_at)
		VALUES($1, $2, $3, $4, NOW())
		ON CONFLICT (ticker, year, quarter) DO NOTHING
		RETURNING id, created_at
	`, t.Ticker, t.Year, t.Quarter, t.Filename).Scan(&t.ID, &t.CreatedAt)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *TranscriptRepository) GetTranscripts(ctx context.Context, limit, offset int) ([]model.Transcript, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker, year, quarter, filename, created_at
		FROM transcripts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transcripts []model.Transcript
	for rows.Next() {
		var t model.Transcript
		err := rows.Scan(&t.ID, &t.Ticker, &t.Year, &t.Quarter, &t.Filename, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transcripts, nil
}

func (r *TranscriptRepository) GetTranscriptTotal(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transcripts`).Scan(&total)
	return total, err
}
