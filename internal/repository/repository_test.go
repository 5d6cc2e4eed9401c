package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/assert/v2"
	"github.com/iforaa/quartergate/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

var periodColumns = []string{"id", "ticker", "year", "quarter", "filename", "created_at"}

func TestTranscriptGetByPeriod_Found(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("FROM transcripts").
		WithArgs("AAPL", int64(2024), int64(3)).
		WillReturnRows(sqlmock.NewRows(periodColumns).AddRow(int64(4), "AAPL", int64(2024), int64(3), "AAPL_2024_Q3_earnings_call.txt", now))

	repo := NewTranscriptRepository(conn)
	got, err := repo.GetByPeriod(context.Background(), "AAPL", 2024, 3)

	assert.Equal(t, nil, err)
	assert.Equal(t, int64(4), got.ID)
	assert.Equal(t, "AAPL_2024_Q3_earnings_call.txt", got.Filename)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestTranscriptGetByPeriod_NotFound(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("FROM transcripts").WillReturnRows(sqlmock.NewRows(periodColumns))

	repo := NewTranscriptRepository(conn)
	got, err := repo.GetByPeriod(context.Background(), "AAPL", 2024, 3)

	assert.Equal(t, nil, err)
	assert.Equal(t, true, got == nil)
}

func TestTranscriptGetByPeriod_Error(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("FROM transcripts").WillReturnError(errors.New("connection reset"))

	repo := NewTranscriptRepository(conn)
	_, err := repo.GetByPeriod(context.Background(), "AAPL", 2024, 3)

	assert.NotEqual(t, nil, err)
}

func TestTranscriptSave(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO transcripts").
		WithArgs("AAPL", int64(2024), int64(3), "AAPL_2024_Q3_earnings_call.txt").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), now))

	repo := NewTranscriptRepository(conn)
	tr := &model.Transcript{Ticker: "AAPL", Year: 2024, Quarter: 3, Filename: "AAPL_2024_Q3_earnings_call.txt"}
	saved, err := repo.Save(context.Background(), tr)

	assert.Equal(t, nil, err)
	assert.Equal(t, true, saved)
	assert.Equal(t, int64(9), tr.ID)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestTranscriptSave_Conflict(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO transcripts").WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	repo := NewTranscriptRepository(conn)
	saved, err := repo.Save(context.Background(), &model.Transcript{Ticker: "AAPL", Year: 2024, Quarter: 3})

	assert.Equal(t, nil, err)
	assert.Equal(t, false, saved)
}

func TestSummarySaveWithSource_CommitsBothRows(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO summaries").
		WithArgs("AAPL", int64(2024), int64(3), "AAPL_2024_Q3_summary.txt").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	mock.ExpectExec("INSERT INTO summary_sources").
		WithArgs(int64(7), "transcript", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewSummaryRepository(conn)
	s := &model.Summary{Ticker: "AAPL", Year: 2024, Quarter: 3, Filename: "AAPL_2024_Q3_summary.txt"}
	saved, err := repo.SaveWithSource(context.Background(), s, model.SummarySource{SourceType: model.SourceTypeTranscript, SourceID: 9})

	assert.Equal(t, nil, err)
	assert.Equal(t, true, saved)
	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestSummarySaveWithSource_RollsBackWhenLinkFails(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO summaries").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))
	mock.ExpectExec("INSERT INTO summary_sources").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	repo := NewSummaryRepository(conn)
	saved, err := repo.SaveWithSource(context.Background(), &model.Summary{Ticker: "AAPL", Year: 2024, Quarter: 3},
		model.SummarySource{SourceType: model.SourceTypeTranscript, SourceID: 9})

	assert.NotEqual(t, nil, err)
	assert.Equal(t, false, saved)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestSummarySaveWithSource_Conflict(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO summaries").WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))
	mock.ExpectRollback()

	repo := NewSummaryRepository(conn)
	saved, err := repo.SaveWithSource(context.Background(), &model.Summary{Ticker: "AAPL", Year: 2024, Quarter: 3},
		model.SummarySource{SourceType: model.SourceTypeTranscript, SourceID: 9})

	assert.Equal(t, nil, err)
	assert.Equal(t, false, saved)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestSummaryGetOrphanSummaries(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("LEFT JOIN summary_sources").
		WillReturnRows(sqlmock.NewRows(periodColumns).
			AddRow(int64(2), "MSFT", int64(2024), int64(2), "MSFT_2024_Q2_summary.txt", now))

	repo := NewSummaryRepository(conn)
	orphans, err := repo.GetOrphanSummaries(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(orphans))
	assert.Equal(t, "MSFT", orphans[0].Ticker)
}

func TestSummaryGetSources(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("FROM summary_sources").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"summary_id", "source_type", "source_id"}).
			AddRow(int64(7), "transcript", int64(9)))

	repo := NewSummaryRepository(conn)
	sources, err := repo.GetSources(context.Background(), 7)

	assert.Equal(t, nil, err)
	assert.Equal(t, []model.SummarySource{{SummaryID: 7, SourceType: "transcript", SourceID: 9}}, sources)
}
