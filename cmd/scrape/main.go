// Command scrape fetches search results from the supported video sites
// for a query, emitting structured JSON to stdout, a directory, or NATS.
// With -interval it polls continuously, tripping a per-site circuit
// breaker when a site keeps failing.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/marklens/marklens/engine/item"
	"github.com/marklens/marklens/engine/scrape"
	"github.com/marklens/marklens/pkg/fn"
	"github.com/marklens/marklens/pkg/metrics"
	"github.com/marklens/marklens/pkg/natsutil"
	"github.com/marklens/marklens/pkg/resilience"
)

var met = metrics.New()

var (
	mDocsTotal = func(site string) *metrics.Counter {
		return met.Counter(metrics.WithLabels("marklens_scrape_docs_total", "site", site), "Results scraped by site")
	}
	mErrorsTotal = func(site string) *metrics.Counter {
		return met.Counter(metrics.WithLabels("marklens_scrape_errors_total", "site", site), "Scrape errors by site")
	}
	mScrapeDur = func(site string) *metrics.Histogram {
		return met.Histogram(metrics.WithLabels("marklens_scrape_duration_seconds", "site", site), "Scrape duration by site", nil)
	}
	mBreakerOpen = func(site string) *metrics.Counter {
		return met.Counter(metrics.WithLabels("marklens_scrape_breaker_open_total", "site", site), "Calls rejected by open breaker")
	}
	mLastScrape = met.Gauge("marklens_scrape_last_timestamp", "Epoch of last scrape")
)

func main() {
	var (
		query       = flag.String("query", "", "search query (required)")
		sitesCSV    = flag.String("sites", "", "comma-separated sites to scrape (default all)")
		maxResults  = flag.Int("max", 50, "max results per site")
		interval    = flag.Duration("interval", 0, "polling interval (0 = one-shot)")
		natsURL     = flag.String("nats", "", "NATS URL (if empty, output JSON to stdout)")
		subject     = flag.String("subject", "marklens.scrape.results", "NATS subject to publish to")
		outputDir   = flag.String("output-dir", "", "directory to write JSON files to")
		metricsPort = flag.Int("metrics-port", 9091, "metrics HTTP port")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *query == "" {
		log.Error("missing -query")
		os.Exit(1)
	}

	sites, err := resolveSites(*sitesCSV)
	if err != nil {
		log.Error("bad -sites", "error", err)
		os.Exit(1)
	}

	met.ServeAsync(*metricsPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var nc *nats.Conn
	if *natsURL != "" {
		nc, err = nats.Connect(*natsURL)
		if err != nil {
			log.Error("nats connect failed", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		log.Info("publishing to NATS", "subject", *subject)
	}

	if *outputDir != "" {
		os.MkdirAll(*outputDir, 0o755)
		log.Info("writing JSON files", "dir", *outputDir)
	}

	facade := scrape.New(scrape.SettingsFromEnv(), log.With("component", "scrape"))

	// One breaker per site so a dead site stops burning retries while the
	// others keep flowing.
	breakers := make(map[scrape.Site]*resilience.Breaker, len(sites))
	for _, s := range sites {
		breakers[s] = resilience.NewBreaker(resilience.BreakerOpts{
			FailThreshold: 3,
			Timeout:       5 * time.Minute,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	emit := func(ctx context.Context, site scrape.Site, records []item.Record) {
		if nc != nil {
			if err := natsutil.Publish(ctx, nc, *subject, records); err != nil {
				log.Error("nats publish failed", "error", err)
			}
		} else if *outputDir == "" {
			if err := enc.Encode(records); err != nil {
				log.Error("encode failed", "error", err)
			}
		}
		if *outputDir != "" {
			name := fmt.Sprintf("%s/%s-%d.json", *outputDir, site, time.Now().UnixNano())
			data, err := json.MarshalIndent(records, "", "  ")
			if err == nil {
				err = os.WriteFile(name, data, 0o644)
			}
			if err != nil {
				log.Error("output-dir write failed", "error", err)
			} else {
				log.Info("wrote results", "file", name, "count", len(records))
			}
		}
	}

	run := func() {
		mLastScrape.Set(time.Now().Unix())
		for _, site := range sites {
			start := time.Now()
			res := resilience.CallResult(breakers[site], ctx, func(ctx context.Context) fn.Result[[]item.Record] {
				return fn.FromPair(facade.Fetch(ctx, site, *query, *maxResults))
			})
			if res.IsErr() {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(res.Error(), resilience.ErrCircuitOpen) {
					mBreakerOpen(string(site)).Inc()
					log.Warn("site circuit open, skipping", "site", site)
				} else {
					mErrorsTotal(string(site)).Inc()
					log.Error("scrape failed", "site", site, "error", res.Error())
				}
				continue
			}
			records := res.Must()
			mScrapeDur(string(site)).Since(start)
			mDocsTotal(string(site)).Add(int64(len(records)))
			log.Info("scraped", "site", site, "count", len(records))
			if len(records) > 0 {
				emit(ctx, site, records)
			}
		}
	}

	run()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-ticker.C:
			run()
		}
	}
}

func resolveSites(csv string) ([]scrape.Site, error) {
	if csv == "" {
		return scrape.SupportedSites(), nil
	}
	var sites []scrape.Site
	for _, name := range strings.Split(csv, ",") {
		site, err := scrape.ParseSite(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, nil
}
