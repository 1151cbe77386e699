// Package pipeline sequences the three stages: harvest every source into its
// slot file, merge the slots into one corpus, import the corpus into the
// store. Sources fail individually without aborting; merge and import
// failures are fatal because nothing downstream has input without them.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/quotemill/quotemill/internal/harvest"
	"github.com/quotemill/quotemill/internal/importer"
	"github.com/quotemill/quotemill/internal/merge"
	"github.com/quotemill/quotemill/internal/quote"
	"github.com/quotemill/quotemill/internal/store"
)

// Outcome classifies one harvester run.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeAcceptable Outcome = "acceptable-failure"
	OutcomeFailure    Outcome = "failure"
)

// acceptableStops is the closed list of source-level failure signatures that
// never abort the pipeline. Anything outside it classifies as a plain
// failure, which still only affects that one source.
var acceptableStops = map[string]string{
	harvest.StopUnavailable:      "site is not accessible",
	harvest.StopNotFound:         "pages returned 404",
	harvest.StopStructureChanged: "site structure changed",
	harvest.StopNoContent:        "no quotes found",
	harvest.StopBudget:           "time budget exhausted",
}

// Runner is one registered harvester. *harvest.Harvester satisfies it.
type Runner interface {
	ID() string
	Run(ctx context.Context, limit int) quote.HarvestRun
}

// StatsStore is the slice of the store the pipeline reads for reporting.
type StatsStore interface {
	CountQuotations(ctx context.Context) (int64, error)
	Statistics(ctx context.Context) (store.Stats, error)
}

// Options select stages and bound the run.
type Options struct {
	SkipHarvest  bool
	SkipMerge    bool
	SkipImport   bool
	ClearFirst   bool
	DataDir      string
	RecordLimit  int
	SourceBudget time.Duration
}

// SourceResult is the per-harvester line of the final report.
type SourceResult struct {
	Source         string
	Outcome        Outcome
	Records        int
	PagesAttempted int
	PagesSucceeded int
	Rejected       int
	StopReason     string
	Warnings       []string
}

// Report is the outcome of one pipeline run.
type Report struct {
	RunID          string
	Sources        []SourceResult
	MergeIn        int
	MergeOut       int
	MergeDiscarded int
	Import         importer.Stats
	StoreTotal     int64
	StoreReachable bool
	Elapsed        time.Duration
}

type Pipeline struct {
	harvesters []Runner
	merger     *merge.Merger
	importer   *importer.Importer
	stats      StatsStore
	logger     *log.Logger
	opts       Options
}

// New wires a pipeline. merger and importer may be nil only when the
// corresponding stage is skipped; stats may always be nil.
func New(harvesters []Runner, merger *merge.Merger, imp *importer.Importer, stats StatsStore, logger *log.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if opts.SourceBudget <= 0 {
		opts.SourceBudget = time.Hour
	}
	return &Pipeline{
		harvesters: harvesters,
		merger:     merger,
		importer:   imp,
		stats:      stats,
		logger:     logger,
		opts:       opts,
	}
}

// Run executes the enabled stages in order. The returned Report is valid even
// when err != nil: it carries whatever progress happened before the fatal
// stage.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	start := time.Now()
	defer func() { report.Elapsed = time.Since(start) }()

	p.logger.Printf("run %s starting", report.RunID)

	if !p.opts.SkipHarvest {
		p.harvestStage(ctx, &report)
	}

	var corpus quote.Corpus
	if !p.opts.SkipMerge {
		var err error
		corpus, err = p.merger.MergeAndWrite(p.opts.DataDir)
		if err != nil {
			return report, fmt.Errorf("merge stage: no usable harvest output under %s: %w", p.opts.DataDir, err)
		}
		report.MergeOut = len(corpus.Records)
		report.MergeDiscarded = corpus.Discarded
		report.MergeIn = report.MergeOut + report.MergeDiscarded
	}

	if !p.opts.SkipImport {
		if p.opts.SkipMerge {
			var err error
			corpus, err = quote.ReadCorpus(p.opts.DataDir)
			if err != nil {
				return report, fmt.Errorf("import stage: corpus file missing under %s: %w", p.opts.DataDir, err)
			}
		}
		stats, err := p.importer.Import(ctx, corpus, p.opts.ClearFirst)
		report.Import = stats
		if err != nil {
			return report, fmt.Errorf("import stage: %w", err)
		}
	}

	p.finalCount(ctx, &report)
	return report, nil
}

func (p *Pipeline) harvestStage(ctx context.Context, report *Report) {
	succeeded := 0
	for _, h := range p.harvesters {
		hctx, cancel := context.WithTimeout(ctx, p.opts.SourceBudget)
		run := h.Run(hctx, p.opts.RecordLimit)
		cancel()

		if err := quote.WriteSlot(p.opts.DataDir, run.Source, run.Records); err != nil {
			p.logger.Printf("write slot for %s: %v", run.Source, err)
		}

		res := classify(run)
		if res.Outcome == OutcomeSuccess {
			succeeded++
		}
		p.logger.Printf("source %s: %s, %d records, %d/%d pages, %d rejected",
			res.Source, res.Outcome, res.Records, res.PagesSucceeded, res.PagesAttempted, res.Rejected)
		report.Sources = append(report.Sources, res)
	}
	if succeeded == 0 {
		p.logger.Printf("WARNING: zero harvesters succeeded this run")
	}
}

// classify maps one HarvestRun onto the outcome taxonomy: any records at all
// is a success (a budget expiry with partial results included); a recognized
// stop signature with nothing collected is acceptable; anything else failed.
func classify(run quote.HarvestRun) SourceResult {
	res := SourceResult{
		Source:         run.Source,
		Records:        len(run.Records),
		PagesAttempted: run.PagesAttempted,
		PagesSucceeded: run.PagesSucceeded,
		Rejected:       run.Rejected,
		StopReason:     run.EarlyStopReason,
	}
	switch {
	case len(run.Records) > 0:
		res.Outcome = OutcomeSuccess
	case run.EarlyStopReason == "":
		res.Outcome = OutcomeAcceptable
		res.Warnings = append(res.Warnings, "no quotes found")
	default:
		msg, ok := acceptableStops[run.EarlyStopReason]
		if ok {
			res.Outcome = OutcomeAcceptable
			res.Warnings = append(res.Warnings, msg)
		} else {
			res.Outcome = OutcomeFailure
			res.Warnings = append(res.Warnings, run.EarlyStopReason)
		}
	}
	return res
}

func (p *Pipeline) finalCount(ctx context.Context, report *Report) {
	if p.stats == nil {
		return
	}
	n, err := p.stats.CountQuotations(ctx)
	if err != nil {
		p.logger.Printf("final store count unavailable: %v", err)
		return
	}
	report.StoreTotal = n
	report.StoreReachable = true
}

// StatsOnly reports current store contents without running any stage.
func (p *Pipeline) StatsOnly(ctx context.Context) (store.Stats, error) {
	if p.stats == nil {
		return store.Stats{}, fmt.Errorf("store not configured")
	}
	return p.stats.Statistics(ctx)
}

const maxWarnings = 3

// Log renders the final enumeration the way operators read it: one line per
// source, then merge and import totals.
func (r Report) Log(logger *log.Logger) {
	logger.Printf("run %s finished in %s", r.RunID, r.Elapsed.Round(time.Millisecond))
	for _, s := range r.Sources {
		line := fmt.Sprintf("  %-12s %-18s records=%d pages=%d/%d rejected=%d",
			s.Source, s.Outcome, s.Records, s.PagesSucceeded, s.PagesAttempted, s.Rejected)
		if s.StopReason != "" {
			line += " stop=" + s.StopReason
		}
		logger.Print(line)
		warnings := s.Warnings
		if len(warnings) > maxWarnings {
			logger.Printf("    (%d further warnings truncated)", len(warnings)-maxWarnings)
			warnings = warnings[:maxWarnings]
		}
		for _, w := range warnings {
			logger.Printf("    warning: %s", w)
		}
	}
	logger.Printf("  merge: %d in, %d out, %d duplicates discarded", r.MergeIn, r.MergeOut, r.MergeDiscarded)
	logger.Printf("  import: %d processed, %d saved, %d skipped, %d rejected",
		r.Import.Processed, r.Import.Saved, r.Import.Skipped, r.Import.Rejected)
	if r.StoreReachable {
		logger.Printf("  store now holds %d quotations", r.StoreTotal)
	}
}
