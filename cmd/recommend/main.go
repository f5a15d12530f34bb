// Command recommend builds a user interest profile from an exported
// bookmarks file, scrapes supported video sites for a query, and prints
// the candidates ranked by similarity to the profile.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/marklens/marklens/engine/bookmarks"
	"github.com/marklens/marklens/engine/item"
	"github.com/marklens/marklens/engine/profile"
	"github.com/marklens/marklens/engine/rank"
	"github.com/marklens/marklens/engine/scrape"
	"github.com/marklens/marklens/pkg/fn"
	"github.com/marklens/marklens/pkg/ollama"
)

// Per-site result limits for a full scrape, mirroring each site's page size.
var defaultRequests = []scrape.Request{
	{Site: scrape.SiteArchive, MaxResults: 50},
	{Site: scrape.SiteSepiaSearch, MaxResults: 20},
	{Site: scrape.SiteOdysee, MaxResults: 20},
}

func main() {
	var (
		bookmarksPath = flag.String("bookmarks", "bookmarks.html", "path to exported bookmarks file")
		query         = flag.String("query", "", "search query (prompts interactively if empty)")
		maxRecs       = flag.Int("n", 30, "maximum number of recommendations")
		mode          = flag.String("mode", "tfidf", "ranking mode: tfidf or embedding")
		sites         = flag.String("sites", "", "comma-separated sites to scrape (default all)")
		noFallback    = flag.Bool("no-fallback", false, "disable example data when scraping fails")
		verbose       = flag.Bool("verbose", false, "enable debug logging")
		ollamaURL     = flag.String("ollama", "http://localhost:11434", "Ollama base URL (embedding mode)")
		ollamaModel   = flag.String("model", "nomic-embed-text", "Ollama embedding model")
	)
	flag.Parse()

	godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, log, runOpts{
		bookmarksPath: *bookmarksPath,
		query:         *query,
		maxRecs:       *maxRecs,
		mode:          *mode,
		sites:         *sites,
		noFallback:    *noFallback,
		ollamaURL:     *ollamaURL,
		ollamaModel:   *ollamaModel,
	}); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted")
			os.Exit(0)
		}
		log.Error("recommend failed", "error", err)
		os.Exit(1)
	}
}

type runOpts struct {
	bookmarksPath string
	query         string
	maxRecs       int
	mode          string
	sites         string
	noFallback    bool
	ollamaURL     string
	ollamaModel   string
}

func run(ctx context.Context, log *slog.Logger, opts runOpts) error {
	if opts.mode != "tfidf" && opts.mode != "embedding" {
		return fmt.Errorf("unknown mode %q (want tfidf or embedding)", opts.mode)
	}

	log.Info("loading bookmarks", "path", opts.bookmarksPath)
	marks, err := bookmarks.ParseFile(opts.bookmarksPath)
	if err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}
	if len(marks) == 0 {
		return fmt.Errorf("no valid bookmarks in %s", opts.bookmarksPath)
	}
	log.Info("bookmarks loaded", "count", len(marks))

	// Build the profile before prompting so an unusable bookmarks file
	// fails fast.
	var (
		embedder *ollama.EmbedClient
		embProf  *profile.EmbeddingProfile
		vec      *profile.Vectorizer
		prof     *profile.Profile
	)
	log.Info("building user profile")
	if opts.mode == "embedding" {
		embedder = ollama.NewEmbedClient(opts.ollamaURL, opts.ollamaModel)
		embProf, err = profile.BuildEmbedding(ctx, marks, embedder)
		if err != nil {
			return fmt.Errorf("build profile: %w", err)
		}
		if embProf == nil {
			return errors.New("could not create a user profile from bookmarks")
		}
	} else {
		vec, prof, err = profile.Build(ctx, marks)
		if err != nil {
			return fmt.Errorf("build profile: %w", err)
		}
		if vec == nil || prof == nil {
			return errors.New("could not create a user profile from bookmarks")
		}
	}

	query := strings.TrimSpace(opts.query)
	if query == "" {
		query, err = promptQuery(ctx)
		if err != nil {
			return err
		}
	}
	log.Info("searching", "query", query)

	reqs, err := requestsFor(opts.sites)
	if err != nil {
		return err
	}

	facade := scrape.New(scrape.SettingsFromEnv(), log.With("component", "scrape"))
	candidates, err := facade.Aggregate(ctx, query, reqs, !opts.noFallback)
	if err != nil {
		return err
	}

	var res fn.Result[[]rank.Ranked]
	if opts.mode == "embedding" {
		res = rank.RankEmbedding(ctx, candidates, embProf, embedder, opts.maxRecs)
	} else {
		res = rank.Rank(ctx, candidates, vec, prof, opts.maxRecs)
	}
	if res.IsErr() {
		return res.Error()
	}
	ranked := res.Must()

	printRecommendations(ranked)
	return nil
}

// requestsFor resolves the -sites flag into scrape requests, keeping the
// default per-site limits for named sites.
func requestsFor(csv string) ([]scrape.Request, error) {
	if csv == "" {
		return defaultRequests, nil
	}
	var reqs []scrape.Request
	for _, name := range strings.Split(csv, ",") {
		site, err := scrape.ParseSite(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		req := scrape.Request{Site: site, MaxResults: 20}
		for _, d := range defaultRequests {
			if d.Site == site {
				req.MaxResults = d.MaxResults
			}
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// promptQuery reads a search query from stdin. Interrupt during the prompt
// surfaces as context.Canceled so main can exit cleanly.
func promptQuery(ctx context.Context) (string, error) {
	fmt.Print("Enter a search query: ")
	lines := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			errs <- err
			return
		}
		lines <- line
	}()
	select {
	case <-ctx.Done():
		fmt.Println()
		return "", context.Canceled
	case err := <-errs:
		return "", fmt.Errorf("read query: %w", err)
	case line := <-lines:
		q := strings.TrimSpace(line)
		if q == "" {
			return "", errors.New("no search query provided")
		}
		return q, nil
	}
}

func printRecommendations(ranked []rank.Ranked) {
	if len(ranked) == 0 {
		fmt.Println("No recommendations found based on your profile.")
		return
	}
	fmt.Printf("\nTop %d Recommendations:\n\n", len(ranked))
	fmt.Println(strings.Repeat("=", 80))
	for i, r := range ranked {
		fmt.Printf("%2d. %s\n", i+1, r.Title)
		fmt.Printf("    URL: %s\n", r.URL)
		fmt.Printf("    Source: %s | Relevance: %.3f\n\n", sourceLabel(r.Record), r.Score)
	}
}

func sourceLabel(r item.Record) string {
	if r.Source != "" {
		return r.Source
	}
	return item.Domain(r.URL)
}
