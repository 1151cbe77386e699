// Package harvest implements the per-source harvesting protocol: endpoint
// probing across URL variants, paced fetching with bounded retries, strategy
// extraction, validation and labelling. A harvester never aborts the pipeline:
// every failure mode collapses into an early-stopped HarvestRun.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/quotemill/quotemill/internal/quote"
	"github.com/quotemill/quotemill/internal/telemetry"
	"github.com/quotemill/quotemill/internal/validate"
)

// Candidate is one extracted excerpt before validation.
type Candidate struct {
	Text   string
	Author string
}

// Strategy is the pluggable per-source extraction logic. The shared protocol
// in Harvester owns probing, pacing, retries and validation; a strategy only
// knows its URLs and markup.
type Strategy interface {
	// ID identifies the source; it names the slot file and tags records.
	ID() string
	// Lang is the declared language of everything this source yields.
	Lang() string
	// Variants lists endpoint candidates in probe order.
	Variants() []string
	// UserAgent overrides the default agent header, "" for the default.
	UserAgent() string
	// Delay is the mandatory inter-request pause for this source.
	Delay() time.Duration
	// RenderJS marks sources that need a browser fetcher.
	RenderJS() bool
	// PageURLs returns the URL fallbacks for unit page (0-based), in trial
	// order. An empty slice means the source has no further units.
	PageURLs(base string, page int) []string
	// Extract pulls candidates out of a fetched body. done=true signals the
	// source reported its end. Zero candidates with a nil error means the
	// page held nothing extractable.
	Extract(page int, body []byte) (cands []Candidate, done bool, err error)
}

// Options tune the shared retry and probe behaviour. Zero values get the
// defaults observed across sources: 3 attempts, 5s linear backoff, one 30s
// rate-limit backoff, 10s probe timeout.
type Options struct {
	MaxRetries       int
	RetryDelay       time.Duration
	RateLimitBackoff time.Duration
	ProbeTimeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 5 * time.Second
	}
	if o.RateLimitBackoff <= 0 {
		o.RateLimitBackoff = 30 * time.Second
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 10 * time.Second
	}
	return o
}

// Harvester drives one Strategy through the shared protocol.
type Harvester struct {
	strat   Strategy
	fetcher Fetcher
	pacer   *rate.Limiter
	cache   *EndpointCache
	metrics *telemetry.Metrics
	logger  *log.Logger
	opts    Options
}

func New(strat Strategy, fetcher Fetcher, cache *EndpointCache, metrics *telemetry.Metrics, logger *log.Logger, opts Options) *Harvester {
	if logger == nil {
		logger = log.Default()
	}
	delay := strat.Delay()
	var pacer *rate.Limiter
	if delay > 0 {
		pacer = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Harvester{
		strat:   strat,
		fetcher: fetcher,
		pacer:   pacer,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		opts:    opts.withDefaults(),
	}
}

// ID returns the strategy identifier.
func (h *Harvester) ID() string { return h.strat.ID() }

// Run executes probe -> page loop -> extract -> validate until limit records
// are collected, the source runs out, or an early-stop condition is hit. It
// never returns an error: unreachable or empty sources produce an empty run
// with EarlyStopReason set, and a context deadline yields whatever was
// collected before it expired.
func (h *Harvester) Run(ctx context.Context, limit int) quote.HarvestRun {
	id := h.strat.ID()
	lang := h.strat.Lang()
	run := quote.HarvestRun{Source: id}

	base, ok := h.probe(ctx)
	if !ok {
		h.logger.Printf("source %s is not accessible, skipping", id)
		run.EarlyStopReason = StopUnavailable
		return run
	}
	h.logger.Printf("source %s available at %s", id, base)

	seen := make(map[string]struct{})
	missStreak := 0

	for page := 0; limit <= 0 || len(run.Records) < limit; page++ {
		if ctx.Err() != nil {
			run.EarlyStopReason = StopBudget
			return run
		}
		urls := h.strat.PageURLs(base, page)
		if len(urls) == 0 {
			return run
		}
		run.PagesAttempted++

		body, err := h.fetchPage(ctx, urls)
		if err != nil {
			if ctx.Err() != nil {
				run.EarlyStopReason = StopBudget
				return run
			}
			switch {
			case errors.Is(err, ErrNotFound):
				missStreak++
				if missStreak >= 2 {
					run.EarlyStopReason = StopNotFound
					return run
				}
			case errors.Is(err, ErrRateLimited):
				h.logger.Printf("%s: still rate limited on page %d, skipping unit", id, page)
			default:
				h.logger.Printf("%s: page %d failed: %v", id, page, err)
			}
			continue
		}

		cands, done, err := h.strat.Extract(page, body)
		if err != nil || len(cands) == 0 {
			if err != nil {
				h.logger.Printf("%s: extract page %d: %v", id, page, err)
			}
			if page == 0 && len(run.Records) == 0 {
				// Zero extractable elements on the first page: the site is up
				// but no longer looks like we expect.
				run.EarlyStopReason = StopNoContent
				return run
			}
			missStreak++
			if missStreak >= 2 {
				run.EarlyStopReason = StopStructureChanged
				return run
			}
			continue
		}
		missStreak = 0
		run.PagesSucceeded++

		for _, c := range cands {
			if limit > 0 && len(run.Records) >= limit {
				break
			}
			text := quote.NormalizeText(c.Text)
			if text == "" {
				continue
			}
			if lang == "ru" && !validate.HasCyrillic(text) {
				run.Rejected++
				h.metrics.RecordRejected(id)
				continue
			}
			if !validate.IsValid(text) {
				run.Rejected++
				h.metrics.RecordRejected(id)
				continue
			}
			if _, dup := seen[quote.DedupKey(text)]; dup {
				continue
			}
			seen[quote.DedupKey(text)] = struct{}{}
			run.Records = append(run.Records, quote.Record{
				Text:   text,
				Author: quote.NormalizeText(c.Author),
				Source: id,
				Lang:   lang,
			})
			h.metrics.RecordAccepted(id)
		}

		if done {
			return run
		}
	}
	return run
}

// probe resolves a working endpoint among the strategy's variants: first 2xx
// wins. The cached endpoint from a previous run is tried first and dropped if
// it stopped answering.
func (h *Harvester) probe(ctx context.Context) (string, bool) {
	id := h.strat.ID()
	if cached, ok := h.cache.Working(ctx, id); ok {
		if h.probeOne(ctx, cached) {
			return cached, true
		}
		h.cache.Forget(ctx, id)
	}
	for _, v := range h.strat.Variants() {
		if h.probeOne(ctx, v) {
			h.cache.SetWorking(ctx, id, v)
			return v, true
		}
	}
	return "", false
}

func (h *Harvester) probeOne(ctx context.Context, url string) bool {
	pctx, cancel := context.WithTimeout(ctx, h.opts.ProbeTimeout)
	defer cancel()
	h.pace(pctx)
	_, status, err := h.fetcher.Fetch(pctx, url)
	h.metrics.PageFetched(h.strat.ID())
	return err == nil && status >= 200 && status < 300
}

// fetchPage walks the URL fallbacks for one unit of work, trying the next
// variant on failure, the way the sources' multi-pattern URL resolution works.
func (h *Harvester) fetchPage(ctx context.Context, urls []string) ([]byte, error) {
	var lastErr error
	for _, u := range urls {
		body, err := h.fetchWithRetry(ctx, u)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// fetchWithRetry applies the uniform retry shape: up to MaxRetries attempts
// with linearly growing delay on transient errors, and a single long backoff
// then one retry on a rate-limit signal. Pacing is enforced before every
// attempt, success or failure.
func (h *Harvester) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	id := h.strat.ID()
	var lastErr error
	rateLimited := false
	backoff := h.opts.RetryDelay

	for attempt := 0; attempt < h.opts.MaxRetries; attempt++ {
		if err := h.pace(ctx); err != nil {
			return nil, err
		}
		body, status, err := h.fetcher.Fetch(ctx, url)
		h.metrics.PageFetched(id)

		if err != nil {
			h.metrics.FetchError(id, "network")
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			h.logger.Printf("%s: attempt %d for %s: %v, retrying in %s", id, attempt+1, url, err, backoff)
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff += h.opts.RetryDelay
			continue
		}

		switch {
		case status == http.StatusNotFound:
			h.metrics.FetchError(id, "not-found")
			return nil, ErrNotFound
		case status == http.StatusForbidden || status == http.StatusTooManyRequests:
			h.metrics.FetchError(id, "rate-limit")
			if rateLimited {
				return nil, ErrRateLimited
			}
			rateLimited = true
			h.logger.Printf("%s: rate limited (%d), backing off %s", id, status, h.opts.RateLimitBackoff)
			if err := sleep(ctx, h.opts.RateLimitBackoff); err != nil {
				return nil, err
			}
			continue
		case status >= 500:
			h.metrics.FetchError(id, "server")
			lastErr = fmt.Errorf("server error %d from %s", status, url)
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff += h.opts.RetryDelay
			continue
		case status >= 200 && status < 300:
			return body, nil
		default:
			return nil, fmt.Errorf("unexpected status %d from %s", status, url)
		}
	}
	if lastErr == nil {
		lastErr = ErrUnavailable
	}
	return nil, fmt.Errorf("exhausted retries for %s: %w", url, lastErr)
}

func (h *Harvester) pace(ctx context.Context) error {
	if h.pacer == nil {
		return nil
	}
	return h.pacer.Wait(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
