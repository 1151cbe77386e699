package pipeline

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quotemill/quotemill/internal/harvest"
	"github.com/quotemill/quotemill/internal/importer"
	"github.com/quotemill/quotemill/internal/merge"
	"github.com/quotemill/quotemill/internal/quote"
	"github.com/quotemill/quotemill/internal/store"
)

type fakeRunner struct {
	run quote.HarvestRun
}

func (f fakeRunner) ID() string { return f.run.Source }

func (f fakeRunner) Run(context.Context, int) quote.HarvestRun { return f.run }

type memStore struct {
	rows map[string]store.Quotation
}

func newMemStore() *memStore { return &memStore{rows: map[string]store.Quotation{}} }

func (m *memStore) InsertQuotations(_ context.Context, batch []store.Quotation) (int64, error) {
	var n int64
	for _, q := range batch {
		k := q.TextOriginal + "\x00" + q.LangOriginal
		if _, ok := m.rows[k]; ok {
			continue
		}
		m.rows[k] = q
		n++
	}
	return n, nil
}

func (m *memStore) EnrichQuotation(_ context.Context, q store.Quotation) (bool, error) {
	_, ok := m.rows[q.TextOriginal+"\x00"+q.LangOriginal]
	return ok, nil
}

func (m *memStore) ClearQuotations(context.Context) error {
	m.rows = map[string]store.Quotation{}
	return nil
}

func (m *memStore) CountQuotations(context.Context) (int64, error) {
	return int64(len(m.rows)), nil
}

func (m *memStore) Statistics(context.Context) (store.Stats, error) {
	return store.Stats{Total: int64(len(m.rows))}, nil
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func successRun(source string, texts ...string) quote.HarvestRun {
	run := quote.HarvestRun{Source: source, PagesAttempted: 1, PagesSucceeded: 1}
	for _, t := range texts {
		run.Records = append(run.Records, quote.Record{Text: t, Source: source, Lang: "en"})
	}
	return run
}

func newPipeline(t *testing.T, runners []Runner, st *memStore, opts Options) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	opts.DataDir = dir
	opts.SourceBudget = time.Minute
	imp := importer.New(st, nil, nil, quietLogger())
	return New(runners, merge.New(quietLogger()), imp, st, quietLogger(), opts), dir
}

func TestRunFullPipeline(t *testing.T) {
	st := newMemStore()
	runners := []Runner{
		fakeRunner{successRun("alpha",
			"The unexamined life is not worth living.",
			"Well begun is half done, or so they say.",
		)},
		fakeRunner{quote.HarvestRun{Source: "down", EarlyStopReason: harvest.StopUnavailable}},
	}
	p, dir := newPipeline(t, runners, st, Options{})

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(report.Sources) != 2 {
		t.Fatalf("sources = %d", len(report.Sources))
	}
	if report.Sources[0].Outcome != OutcomeSuccess {
		t.Errorf("alpha outcome = %s", report.Sources[0].Outcome)
	}
	if report.Sources[1].Outcome != OutcomeAcceptable {
		t.Errorf("down outcome = %s", report.Sources[1].Outcome)
	}

	// The failed source still leaves an empty slot file behind.
	if _, err := os.Stat(quote.SlotPath(dir, "down")); err != nil {
		t.Errorf("missing slot for failed source: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, quote.CorpusFileName)); err != nil {
		t.Errorf("missing corpus file: %v", err)
	}

	if report.MergeOut != 2 || report.Import.Saved != 2 {
		t.Errorf("merge out = %d, import saved = %d", report.MergeOut, report.Import.Saved)
	}
	if !report.StoreReachable || report.StoreTotal != 2 {
		t.Errorf("store total = %d reachable=%v", report.StoreTotal, report.StoreReachable)
	}
	if report.RunID == "" {
		t.Error("missing run id")
	}
}

func TestRunMergeFatalWithoutSlots(t *testing.T) {
	p, _ := newPipeline(t, nil, newMemStore(), Options{SkipHarvest: true})

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal merge error")
	}
	if !strings.Contains(err.Error(), "merge stage") {
		t.Errorf("error = %v", err)
	}
}

func TestRunImportReusesCorpusWhenMergeSkipped(t *testing.T) {
	st := newMemStore()
	p, dir := newPipeline(t, nil, st, Options{SkipHarvest: true, SkipMerge: true})

	corpus := quote.Corpus{Records: []quote.Record{
		{Text: "The unexamined life is not worth living.", Source: "alpha", Lang: "en"},
	}}
	if err := quote.WriteCorpus(dir, corpus); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Import.Saved != 1 {
		t.Errorf("import saved = %d", report.Import.Saved)
	}
}

func TestRunImportFatalWithoutCorpus(t *testing.T) {
	p, _ := newPipeline(t, nil, newMemStore(), Options{SkipHarvest: true, SkipMerge: true})

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal import error")
	}
	if !strings.Contains(err.Error(), "corpus file missing") {
		t.Errorf("error = %v", err)
	}
}

func TestClassifyPartialBudgetRunIsSuccess(t *testing.T) {
	run := successRun("slow", "Whatever was collected before the deadline counts.")
	run.EarlyStopReason = harvest.StopBudget

	res := classify(run)
	if res.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %s, want success for partial results", res.Outcome)
	}
}

func TestClassifyUnknownReasonIsFailure(t *testing.T) {
	res := classify(quote.HarvestRun{Source: "odd", EarlyStopReason: "panic-in-parser"})
	if res.Outcome != OutcomeFailure {
		t.Errorf("outcome = %s, want failure", res.Outcome)
	}
}

func TestStatsOnly(t *testing.T) {
	st := newMemStore()
	st.rows["x\x00en"] = store.Quotation{}
	p, _ := newPipeline(t, nil, st, Options{})

	stats, err := p.StatsOnly(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("total = %d", stats.Total)
	}
}
