// Package importer loads a merged corpus into Postgres. Rows already present
// keep their stored values; the importer only ever adds or fills gaps.
package importer

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/quotemill/quotemill/internal/enrich"
	"github.com/quotemill/quotemill/internal/quote"
	"github.com/quotemill/quotemill/internal/store"
	"github.com/quotemill/quotemill/internal/telemetry"
	"github.com/quotemill/quotemill/internal/validate"
)

const batchSize = 100

// QuoteStore is the slice of the store the importer needs.
type QuoteStore interface {
	InsertQuotations(ctx context.Context, batch []store.Quotation) (int64, error)
	EnrichQuotation(ctx context.Context, q store.Quotation) (bool, error)
	ClearQuotations(ctx context.Context) error
	CountQuotations(ctx context.Context) (int64, error)
}

// Stats reports one import or enrich pass.
type Stats struct {
	Processed int
	Saved     int
	Skipped   int
	Rejected  int
}

type Importer struct {
	store      QuoteStore
	translator enrich.Translator
	metrics    *telemetry.Metrics
	logger     *log.Logger
}

// New builds an importer. translator may be nil; enrichment then degrades to
// filling authors and tags only.
func New(st QuoteStore, translator enrich.Translator, metrics *telemetry.Metrics, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(os.Stdout, "[IMPORT] ", log.LstdFlags)
	}
	return &Importer{store: st, translator: translator, metrics: metrics, logger: logger}
}

// Import writes the corpus in batches. Every record is validated again on the
// way in so a hand-edited corpus file cannot smuggle rejects into the table.
// When clearFirst is set the table is emptied before the first batch.
func (im *Importer) Import(ctx context.Context, corpus quote.Corpus, clearFirst bool) (Stats, error) {
	if clearFirst {
		im.logger.Printf("clearing quotations table")
		if err := im.store.ClearQuotations(ctx); err != nil {
			return Stats{}, fmt.Errorf("clear table: %w", err)
		}
	}

	var stats Stats
	batch := make([]store.Quotation, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := im.store.InsertQuotations(ctx, batch)
		if err != nil {
			im.metrics.ImportError()
			return fmt.Errorf("insert batch: %w", err)
		}
		stats.Saved += int(inserted)
		stats.Skipped += len(batch) - int(inserted)
		im.metrics.ImportSaved(int(inserted))
		im.metrics.ImportSkipped(len(batch) - int(inserted))
		batch = batch[:0]
		return nil
	}

	for _, rec := range corpus.Records {
		stats.Processed++
		text := quote.NormalizeText(rec.Text)
		if !validate.IsValid(text) {
			stats.Rejected++
			continue
		}
		batch = append(batch, toQuotation(rec, text))
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}

	im.logger.Printf("import done: %d processed, %d saved, %d skipped, %d rejected",
		stats.Processed, stats.Saved, stats.Skipped, stats.Rejected)
	return stats, nil
}

// Enrich updates existing rows from the corpus without inserting anything.
// When a translator is configured a best-effort translation is attached;
// translation failures leave the fields empty rather than failing the pass.
// Records that match no stored quotation count as skipped.
func (im *Importer) Enrich(ctx context.Context, corpus quote.Corpus) (Stats, error) {
	var stats Stats
	for _, rec := range corpus.Records {
		stats.Processed++
		text := quote.NormalizeText(rec.Text)
		if !validate.IsValid(text) {
			stats.Rejected++
			continue
		}
		q := toQuotation(rec, text)
		im.translate(ctx, &q)
		updated, err := im.store.EnrichQuotation(ctx, q)
		if err != nil {
			im.metrics.ImportError()
			return stats, fmt.Errorf("enrich record: %w", err)
		}
		if updated {
			stats.Saved++
		} else {
			stats.Skipped++
		}
	}
	im.logger.Printf("enrich done: %d processed, %d updated, %d unmatched, %d rejected",
		stats.Processed, stats.Saved, stats.Skipped, stats.Rejected)
	return stats, nil
}

func (im *Importer) translate(ctx context.Context, q *store.Quotation) {
	if im.translator == nil || q.TextTranslated != "" {
		return
	}
	target := "ru"
	if q.LangOriginal == "ru" {
		target = "en"
	}
	translated, err := im.translator.Translate(ctx, q.TextOriginal, q.LangOriginal, target)
	if err != nil {
		im.logger.Printf("translate %q: %v", q.TextOriginal, err)
		return
	}
	q.TextTranslated = translated
	q.LangTranslated = target
}

func toQuotation(rec quote.Record, text string) store.Quotation {
	return store.Quotation{
		TextOriginal: text,
		LangOriginal: rec.Lang,
		Author:       rec.Author,
		SourceURL:    rec.Source,
		Tags:         enrich.Categorize(text),
		IsValidated:  true,
	}
}
