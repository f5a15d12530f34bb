package scrape

import (
	"context"

	"github.com/marklens/marklens/engine/item"
	"github.com/marklens/marklens/pkg/fn"
)

// Request names one site to query and how many results to take from it.
type Request struct {
	Site       Site
	MaxResults int
}

// Aggregate fetches candidates from every requested site with bounded
// concurrency, skipping failed sites instead of propagating their errors.
// Successes are concatenated in request order. If nothing was fetched and
// allowFallback is set, a small static example set is substituted so the
// ranker always has input in offline conditions; with fallback disallowed
// the call fails with ErrNoCandidates.
func (f *Facade) Aggregate(ctx context.Context, query string, reqs []Request, allowFallback bool) ([]item.Record, error) {
	results := fn.ParMapResult(reqs, f.settings.MaxConcurrent, func(req Request) fn.Result[[]item.Record] {
		return fn.FromPair(f.Fetch(ctx, req.Site, query, req.MaxResults))
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []item.Record
	for i, r := range results {
		records, err := r.Unwrap()
		if err != nil {
			f.logger.Warn("skipping site", "site", reqs[i].Site, "error", err)
			continue
		}
		all = append(all, records...)
	}

	if len(all) == 0 {
		if allowFallback {
			f.logger.Warn("no candidates from any site, using example data")
			return ExampleCandidates(), nil
		}
		return nil, ErrNoCandidates
	}

	f.logger.Info("aggregated candidates", "count", len(all), "sites", len(reqs))
	return all, nil
}

// ExampleCandidates is the static fallback set used when every site
// fails and fallback is permitted.
func ExampleCandidates() []item.Record {
	return []item.Record{
		{
			Title:  "Pico C++ Projects",
			URL:    "https://www.raspberrypi.com/documentation/microcontrollers/cpp.html",
			Source: "example",
		},
		{
			Title:  "The Pico C++ Projects",
			URL:    "https://projects.raspberrypi.org/en/projects/getting-started-with-pico",
			Source: "example",
		},
		{
			Title:  "Advanced Pico C++ Projects",
			URL:    "https://www.tomshardware.com/how-to/raspberry-pi-pico-projects",
			Source: "example",
		},
	}
}
