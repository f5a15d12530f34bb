// Package scrape fetches candidate records from content sites behind one
// façade: a fixed site registry, bounded retry with configurable backoff,
// fallback user-agent rotation, and a multi-site aggregation layer that
// tolerates per-site failure.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/marklens/marklens/engine/item"
	"github.com/marklens/marklens/pkg/fn"
)

// pipelineFunc runs one scrape attempt against one site and returns the
// parsed records. The default implementation is HTTP fetch + selector
// parse; tests substitute stubs.
type pipelineFunc func(ctx context.Context, site Site, query, userAgent string) ([]item.Record, error)

// Facade is the unified fetch interface over all supported sites. It is
// constructed explicitly and passed wherever needed; there is no package
// singleton. Safe for concurrent Fetch calls.
type Facade struct {
	settings Settings
	logger   *slog.Logger
	client   *http.Client
	limiters map[Site]*rate.Limiter

	// test seams
	pipeline pipelineFunc
	sleep    func(context.Context, time.Duration) error
}

// New creates a Facade with per-site rate limiters resolved once from the
// site registry.
func New(settings Settings, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Facade{
		settings: settings,
		logger:   logger,
		client: &http.Client{
			Timeout:   time.Duration(settings.Timeout) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiters: make(map[Site]*rate.Limiter, len(siteConfigs)),
	}
	for site, cfg := range siteConfigs {
		every := time.Duration(cfg.throttleSecs * float64(time.Second))
		f.limiters[site] = rate.NewLimiter(rate.Every(every), 1)
	}
	f.pipeline = f.httpPipeline
	return f
}

// Fetch retrieves up to maxResults candidate records for query from one
// site, retrying per the configured backoff strategy. The site check
// happens before any network activity.
//
// Result post-processing truncates to maxResults first and de-duplicates
// by URL second, so the first-seen records fix the truncation window and
// the final count may fall below maxResults under duplicate-heavy input.
func (f *Facade) Fetch(ctx context.Context, site Site, query string, maxResults int) ([]item.Record, error) {
	if _, ok := siteConfigs[site]; !ok {
		return nil, &UnsupportedSiteError{Site: site, Supported: SupportedSites()}
	}

	opts := f.settings.retryOpts()
	opts.Sleep = f.sleep

	result := fn.Retry(ctx, opts, func(ctx context.Context, attempt int) fn.Result[[]item.Record] {
		ua := f.userAgentFor(attempt)
		f.logger.Debug("fetch attempt",
			"site", site, "attempt", attempt+1, "of", opts.MaxAttempts)

		if lim := f.limiters[site]; lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return fn.Err[[]item.Record](err)
			}
		}

		records, err := f.pipeline(ctx, site, query, ua)
		if err != nil {
			f.logger.Warn("fetch attempt failed", "site", site, "attempt", attempt+1, "error", err)
			return fn.Err[[]item.Record](err)
		}
		if len(records) == 0 {
			f.logger.Warn("fetch attempt returned no records", "site", site, "attempt", attempt+1)
			return fn.Err[[]item.Record](errNoResults)
		}
		return fn.Ok(records)
	})

	records, err := result.Unwrap()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &SiteError{Site: site, Attempts: opts.MaxAttempts, Err: err}
	}

	f.logger.Info("fetched", "site", site, "records", len(records))
	records = fn.Truncate(records, maxResults)
	return fn.UniqueBy(records, func(r item.Record) string { return r.URL }), nil
}

// userAgentFor picks the user agent for a zero-based attempt: the primary
// agent first, then round-robin over the fallback list once rotation
// kicks in.
func (f *Facade) userAgentFor(attempt int) string {
	s := f.settings
	if attempt > 0 && s.FallbackEnabled && s.EnableFallbackUserAgents && len(s.FallbackUserAgents) > 0 {
		return s.FallbackUserAgents[(attempt-1)%len(s.FallbackUserAgents)]
	}
	return s.UserAgent
}

// httpPipeline is the production pipeline: build the start URL, fetch it,
// parse result links.
func (f *Facade) httpPipeline(ctx context.Context, site Site, query, userAgent string) ([]item.Record, error) {
	cfg := siteConfigs[site]

	fetch := fn.TracedStage("scrape.fetch", fn.Stage[string, string](
		func(ctx context.Context, u string) fn.Result[string] {
			return f.get(ctx, u, userAgent)
		}))
	parse := fn.TracedStage("scrape.parse", fn.MapStage(
		func(body string) []item.Record {
			return parseResults(body, cfg, site)
		}))

	return fn.Then(fetch, parse)(ctx, cfg.start(query)).Unwrap()
}

func (f *Facade) get(ctx context.Context, url, userAgent string) fn.Result[string] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fn.Err[string](err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fn.Err[string](err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fn.Err[string](fmt.Errorf("http %d from %s", resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fn.Err[string](fmt.Errorf("read body: %w", err))
	}
	return fn.Ok(string(body))
}
