package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/quotemill/quotemill/config"
	"github.com/quotemill/quotemill/internal/enrich"
	"github.com/quotemill/quotemill/internal/harvest"
	"github.com/quotemill/quotemill/internal/harvest/sources"
	"github.com/quotemill/quotemill/internal/importer"
	"github.com/quotemill/quotemill/internal/merge"
	"github.com/quotemill/quotemill/internal/pipeline"
	"github.com/quotemill/quotemill/internal/store"
	"github.com/quotemill/quotemill/internal/telemetry"
)

func runCMD() *cobra.Command {
	var (
		cfgPath     string
		skipHarvest bool
		skipMerge   bool
		skipImport  bool
		clearFirst  bool
		yes         bool
		statsOnly   bool
		dataDir     string
		limit       int
		schedule    string
	)

	var run = &cobra.Command{
		Use:   "run",
		Short: "Run the harvest, merge and import pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			logger := log.New(os.Stdout, "[QUOTEMILL] ", log.LstdFlags)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.New(ctx, cfg.Storage.Postgres.DSN())
			if err != nil {
				if !skipImport || statsOnly {
					return fmt.Errorf("store unreachable: %w", err)
				}
				logger.Printf("store unreachable, continuing without it: %v", err)
				st = nil
			}
			if st != nil {
				defer st.Close()
			}

			if dataDir == "" {
				dataDir = cfg.General.DataDir
			}

			p := buildPipeline(cfg, st, logger, pipeline.Options{
				SkipHarvest:  skipHarvest,
				SkipMerge:    skipMerge,
				SkipImport:   skipImport,
				ClearFirst:   clearFirst,
				DataDir:      dataDir,
				RecordLimit:  limit,
				SourceBudget: cfg.General.SourceBudget,
			})

			if statsOnly {
				stats, err := p.StatsOnly(ctx)
				if err != nil {
					return err
				}
				printStats(logger, stats)
				return nil
			}

			if clearFirst && !yes {
				if !confirm(cmd, "This will delete every stored quotation before importing. Continue?") {
					logger.Printf("aborted")
					return nil
				}
			}

			if schedule != "" {
				return runScheduled(ctx, p, logger, schedule)
			}

			report, err := p.Run(ctx)
			report.Log(logger)
			return err
		},
	}

	run.Flags().BoolVar(&skipHarvest, "skip-harvest", false, "reuse existing slot files instead of harvesting")
	run.Flags().BoolVar(&skipMerge, "skip-merge", false, "reuse the existing corpus file instead of merging")
	run.Flags().BoolVar(&skipImport, "skip-import", false, "stop after writing the corpus")
	run.Flags().BoolVar(&clearFirst, "clear", false, "delete all stored quotations before importing")
	run.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt for --clear")
	run.Flags().BoolVar(&statsOnly, "stats", false, "print store statistics and exit without running any stage")
	run.Flags().StringVar(&dataDir, "data-dir", "", "directory for slot and corpus files (default from config)")
	run.Flags().IntVar(&limit, "limit", 0, "per-source record cap, 0 for unlimited")
	run.Flags().StringVar(&schedule, "schedule", "", "cron expression; keep running the pipeline on this schedule")
	run.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.yaml)")

	return run
}

func buildPipeline(cfg *config.Config, st *store.Store, logger *log.Logger, opts pipeline.Options) *pipeline.Pipeline {
	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		metrics = telemetry.New(prometheus.DefaultRegisterer)
	}

	var cache *harvest.EndpointCache
	if cfg.Storage.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr(),
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		cache = harvest.NewEndpointCache(rdb, cfg.Storage.Redis.TTL)
	}

	var runners []pipeline.Runner
	for _, strat := range buildStrategies(cfg.Harvest) {
		fetcher := pickFetcher(cfg.Harvest, strat)
		hLogger := log.New(os.Stdout, "["+strings.ToUpper(strat.ID())+"] ", log.LstdFlags)
		runners = append(runners, harvest.New(strat, fetcher, cache, metrics, hLogger, harvest.Options{}))
	}

	var translator enrich.Translator
	if cfg.Translator.Endpoint != "" {
		translator = enrich.NewHTTPTranslator(cfg.Translator.Endpoint, cfg.Translator.APIKey, cfg.Translator.Timeout)
	}

	var statsStore pipeline.StatsStore
	var quoteStore importer.QuoteStore
	if st != nil {
		statsStore = st
		quoteStore = st
	}

	merger := merge.New(log.New(os.Stdout, "[MERGE] ", log.LstdFlags))
	imp := importer.New(quoteStore, translator, metrics, log.New(os.Stdout, "[IMPORT] ", log.LstdFlags))

	return pipeline.New(runners, merger, imp, statsStore, logger, opts)
}

// buildStrategies instantiates every enabled source in fixed order so slot
// files and merge precedence stay deterministic across runs.
func buildStrategies(hc config.HarvestConfig) []harvest.Strategy {
	var strats []harvest.Strategy
	add := func(name string, build func(config.SourceConfig) harvest.Strategy) {
		sc, ok := hc.Sources[name]
		if !ok || !sc.Enabled {
			return
		}
		strats = append(strats, harvest.WithDelay(build(sc), sc.Delay))
	}

	add("citaty", func(sc config.SourceConfig) harvest.Strategy { return sources.NewCitaty(sc.MaxPages) })
	add("forismatic", func(sc config.SourceConfig) harvest.Strategy { return sources.NewForismatic(sc.MaxPages) })
	add("goodreads", func(sc config.SourceConfig) harvest.Strategy { return sources.NewGoodreads(sc.MaxPages, sc.RenderJS) })
	add("quotable", func(sc config.SourceConfig) harvest.Strategy { return sources.NewQuotable(sc.MaxPages) })
	add("wikiquote", func(sc config.SourceConfig) harvest.Strategy { return sources.NewWikiquote(sc.Authors) })
	add("zenquotes", func(sc config.SourceConfig) harvest.Strategy { return sources.NewZenQuotes(sc.MaxPages) })
	return strats
}

func pickFetcher(hc config.HarvestConfig, strat harvest.Strategy) harvest.Fetcher {
	ua := strat.UserAgent()
	if ua == "" {
		ua = hc.UserAgent
	}
	if strat.RenderJS() {
		return harvest.NewBrowserFetcher(hc.FetchTimeout, ua)
	}
	return harvest.NewHTTPFetcher(hc.FetchTimeout, ua)
}

func runScheduled(ctx context.Context, p *pipeline.Pipeline, logger *log.Logger, schedule string) error {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	for {
		report, err := p.Run(ctx)
		report.Log(logger)
		if err != nil {
			logger.Printf("run failed: %v", err)
		}

		next := expr.Next(time.Now())
		if next.IsZero() {
			return fmt.Errorf("schedule %q has no future activation", schedule)
		}
		logger.Printf("next run at %s", next.Format(time.RFC3339))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Until(next)):
		}
	}
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printStats(logger *log.Logger, stats store.Stats) {
	logger.Printf("store holds %d quotations", stats.Total)
	for lang, n := range stats.ByLanguage {
		logger.Printf("  language %s: %d (%d distinct authors)", lang, n, stats.AuthorsByLanguage[lang])
	}
	for src, n := range stats.BySource {
		logger.Printf("  source %s: %d", src, n)
	}
	for _, a := range stats.TopAuthors {
		logger.Printf("  author %s: %d", a.Author, a.Count)
	}
}
