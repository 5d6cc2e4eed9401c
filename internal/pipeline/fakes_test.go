package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iforaa/quartergate/internal/model"
	"github.com/iforaa/quartergate/pkg/blob"
	"github.com/iforaa/quartergate/pkg/calendar"
	"github.com/iforaa/quartergate/pkg/llm"
	"github.com/iforaa/quartergate/pkg/transcript"
)

func periodKey(ticker string, year, quarter int) string {
	return fmt.Sprintf("%s/%d/%d", ticker, year, quarter)
}

// journal records store writes across fakes so tests can check ordering.
type journal struct {
	events []string
}

func (j *journal) add(event string) {
	if j != nil {
		j.events = append(j.events, event)
	}
}

type memTranscriptStore struct {
	rows    map[string]*model.Transcript
	nextID  int64
	inserts int
	getErr  error
	saveErr error
	journal *journal
}

func newMemTranscriptStore(j *journal) *memTranscriptStore {
	return &memTranscriptStore{rows: map[string]*model.Transcript{}, nextID: 100, journal: j}
}

func (s *memTranscriptStore) GetByPeriod(ctx context.Context, ticker string, year, quarter int) (*model.Transcript, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	t, ok := s.rows[periodKey(ticker, year, quarter)]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memTranscriptStore) Save(ctx context.Context, t *model.Transcript) (bool, error) {
	if s.saveErr != nil {
		return false, s.saveErr
	}
	key := periodKey(t.Ticker, t.Year, t.Quarter)
	if _, ok := s.rows[key]; ok {
		return false, nil
	}
	s.nextID++
	t.ID = s.nextID
	t.CreatedAt = time.Now()
	cp := *t
	s.rows[key] = &cp
	s.inserts++
	s.journal.add("transcript:" + t.Ticker)
	return true, nil
}

func (s *memTranscriptStore) seed(t model.Transcript) {
	s.rows[periodKey(t.Ticker, t.Year, t.Quarter)] = &t
}

type memSummaryStore struct {
	rows    map[string]*model.Summary
	links   []model.SummarySource
	nextID  int64
	inserts int
	getErr  error
	saveErr error
	journal *journal
}

func newMemSummaryStore(j *journal) *memSummaryStore {
	return &memSummaryStore{rows: map[string]*model.Summary{}, nextID: 500, journal: j}
}

func (s *memSummaryStore) GetByPeriod(ctx context.Context, ticker string, year, quarter int) (*model.Summary, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	sm, ok := s.rows[periodKey(ticker, year, quarter)]
	if !ok {
		return nil, nil
	}
	cp := *sm
	return &cp, nil
}

func (s *memSummaryStore) SaveWithSource(ctx context.Context, sm *model.Summary, source model.SummarySource) (bool, error) {
	if s.saveErr != nil {
		return false, s.saveErr
	}
	key := periodKey(sm.Ticker, sm.Year, sm.Quarter)
	if _, ok := s.rows[key]; ok {
		return false, nil
	}
	s.nextID++
	sm.ID = s.nextID
	cp := *sm
	s.rows[key] = &cp
	source.SummaryID = sm.ID
	s.links = append(s.links, source)
	s.inserts++
	s.journal.add("summary:" + sm.Ticker)
	return true, nil
}

func (s *memSummaryStore) seed(sm model.Summary) {
	s.rows[periodKey(sm.Ticker, sm.Year, sm.Quarter)] = &sm
}

type memBlobs struct {
	objects     map[string]string
	uploads     []string
	downloads   int
	uploadErr   error
	downloadErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string]string{}}
}

func (b *memBlobs) Upload(ctx context.Context, name, content string) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	b.objects[name] = content
	b.uploads = append(b.uploads, name)
	return nil
}

func (b *memBlobs) Download(ctx context.Context, name string) (string, error) {
	b.downloads++
	if b.downloadErr != nil {
		return "", b.downloadErr
	}
	content, ok := b.objects[name]
	if !ok {
		return "", fmt.Errorf("download %s: %w", name, blob.ErrNotFound)
	}
	return content, nil
}

func (b *memBlobs) Name() string { return "memory" }

type fakeProvider struct {
	results map[string]transcript.Result
	calls   int
}

func (p *fakeProvider) Fetch(ctx context.Context, ticker string, year, quarter int) transcript.Result {
	p.calls++
	res, ok := p.results[periodKey(ticker, year, quarter)]
	if !ok {
		return transcript.AbsentResult()
	}
	return res
}

func (p *fakeProvider) Name() string { return "fake" }

type fakeCompleter struct {
	text     string
	err      error
	errOn    int
	calls    int
	segments [][]llm.Segment
}

func (c *fakeCompleter) Complete(ctx context.Context, segments []llm.Segment) (string, error) {
	c.calls++
	c.segments = append(c.segments, segments)
	if c.err != nil && (c.errOn == 0 || c.errOn == c.calls) {
		return "", c.err
	}
	return c.text, nil
}

func (c *fakeCompleter) Model() string { return "fake-model" }

type fakePublisher struct {
	messages  []string
	err       error
	onPublish func()
	journal   *journal
}

func (p *fakePublisher) Publish(ctx context.Context, text string) error {
	if p.onPublish != nil {
		p.onPublish()
	}
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, text)

	header, _, _ := strings.Cut(text, "\n")
	p.journal.add("publish:" + strings.TrimPrefix(header, "📢 New Update for Ticker: "))
	return nil
}

type fakeDetector struct {
	symbols   []calendar.Symbol
	err       error
	reference time.Time
	max       int
	calls     int
}

func (d *fakeDetector) Detect(ctx context.Context, reference time.Time, max int) ([]calendar.Symbol, error) {
	d.calls++
	d.reference = reference
	d.max = max
	return d.symbols, d.err
}

type countingCloser struct {
	closed int
}

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

type fakeOpener struct {
	stores Stores
	closer *countingCloser
	opened int
	err    error
}

func (o *fakeOpener) OpenStores(ctx context.Context) (Stores, io.Closer, error) {
	o.opened++
	if o.err != nil {
		return Stores{}, nil, o.err
	}
	return o.stores, o.closer, nil
}

type fakeLocker struct {
	err      error
	acquired int
	released []string
}

func (l *fakeLocker) Acquire(ctx context.Context) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	l.acquired++
	return "token-1", nil
}

func (l *fakeLocker) Release(ctx context.Context, token string) error {
	l.released = append(l.released, token)
	return nil
}
