package scrape

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCandidates is returned by Aggregate when no site produced results
// and fallback data is disallowed.
var ErrNoCandidates = errors.New("scrape: no candidates from any site")

// errNoResults marks an attempt that completed without error but parsed
// zero records. It never escapes Fetch directly; exhaustion converts it
// into a SiteError with a generic message.
var errNoResults = errors.New("scrape: no results")

// UnsupportedSiteError reports a fetch against a site the façade does not
// know. Raised before any network activity.
type UnsupportedSiteError struct {
	Site      Site
	Supported []Site
}

func (e *UnsupportedSiteError) Error() string {
	names := make([]string, len(e.Supported))
	for i, s := range e.Supported {
		names[i] = string(s)
	}
	return fmt.Sprintf("scrape: site %q not supported, supported sites: %s",
		e.Site, strings.Join(names, ", "))
}

// SiteError reports that every retry attempt against one site failed.
// Err is the last error observed; the aggregation layer downgrades this
// to a logged, skipped site.
type SiteError struct {
	Site     Site
	Attempts int
	Err      error
}

func (e *SiteError) Error() string {
	if errors.Is(e.Err, errNoResults) {
		return fmt.Sprintf("scrape: %s: all %d attempts returned no results", e.Site, e.Attempts)
	}
	return fmt.Sprintf("scrape: %s: all %d attempts failed: %v", e.Site, e.Attempts, e.Err)
}

func (e *SiteError) Unwrap() error { return e.Err }
