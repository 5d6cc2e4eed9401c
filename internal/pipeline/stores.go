package pipeline

import (
	"context"
	"database/sql"
	"io"

	"github.com/iforaa/quartergate/internal/model"
	"github.com/iforaa/quartergate/internal/repository"
)

type TranscriptStore interface {
	GetByPeriod(ctx context.Context, ticker string, year, quarter int) (*model.Transcript, error)
	Save(ctx context.Context, transcript *model.Transcript) (bool, error)
}

type SummaryStore interface {
	GetByPeriod(ctx context.Context, ticker string, year, quarter int) (*model.Summary, error)
	SaveWithSource(ctx context.Context, summary *model.Summary, source model.SummarySource) (bool, error)
}

type Stores struct {
	Transcripts TranscriptStore
	Summaries   SummaryStore
}

// StoreOpener hands out the stores for one run together with the resource
// that must be closed when the run ends.
type StoreOpener interface {
	OpenStores(ctx context.Context) (Stores, io.Closer, error)
}

type sqlOpener struct {
	db *sql.DB
}

// NewSQLOpener pins every run to a single connection taken from the pool.
func NewSQLOpener(db *sql.DB) StoreOpener {
	return &sqlOpener{db: db}
}

func (o *sqlOpener) OpenStores(ctx context.Context) (Stores, io.Closer, error) {
	conn, err := o.db.Conn(ctx)
	if err != nil {
		return Stores{}, nil, err
	}

	return Stores{
		Transcripts: repository.NewTranscriptRepository(conn),
		Summaries:   repository.NewSummaryRepository(conn),
	}, conn, nil
}
