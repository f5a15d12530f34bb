package scrape

import (
	"net/url"
	"sort"
)

// Site identifies one supported content source.
type Site string

const (
	SiteArchive     Site = "archive"
	SiteSepiaSearch Site = "sepiasearch"
	SiteOdysee      Site = "odysee"
)

// selectorSpec describes how to pull result links out of a site's search
// page markup: anchors matching Tag/Class whose href starts with
// HrefPrefix. TitleAttr names the attribute carrying the display title;
// empty means the anchor's text content.
type selectorSpec struct {
	Tag        string
	Class      string
	HrefPrefix string
	TitleAttr  string
}

// siteConfig is the fixed per-site pipeline definition: how to build the
// start URL for a query, how to recognize result links, how to absolutize
// relative hrefs, and how hard the site may be hit.
type siteConfig struct {
	start          func(query string) string
	selector       selectorSpec
	baseURL        string
	throttleSecs   float64
}

// siteConfigs is resolved once at package init and never mutated.
var siteConfigs = map[Site]siteConfig{
	SiteArchive: {
		start: func(q string) string {
			if q == "" {
				return "https://archive.org/details/movies"
			}
			return "https://archive.org/search.php?query=" + url.QueryEscape(q)
		},
		selector: selectorSpec{Tag: "a", Class: "stealth", HrefPrefix: "/details/", TitleAttr: "title"},
		baseURL:  "https://archive.org",
		throttleSecs: 1.0,
	},
	SiteSepiaSearch: {
		start: func(q string) string {
			if q == "" {
				return "https://sepiasearch.org/"
			}
			return "https://sepiasearch.org/search?search=" + url.QueryEscape(q)
		},
		selector: selectorSpec{Tag: "a", Class: "video-miniature-name", HrefPrefix: "https://"},
		baseURL:  "https://sepiasearch.org",
		throttleSecs: 0.7,
	},
	SiteOdysee: {
		start: func(q string) string {
			if q == "" {
				return "https://odysee.com/$/trending"
			}
			return "https://odysee.com/$/search?q=" + url.QueryEscape(q)
		},
		selector: selectorSpec{Tag: "a", Class: "claim-link", HrefPrefix: "/@", TitleAttr: "aria-label"},
		baseURL:  "https://odysee.com",
		throttleSecs: 1.2,
	},
}

// SupportedSites lists the known site tags in stable order.
func SupportedSites() []Site {
	sites := make([]Site, 0, len(siteConfigs))
	for s := range siteConfigs {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })
	return sites
}

// ParseSite validates a user-supplied site name.
func ParseSite(name string) (Site, error) {
	s := Site(name)
	if _, ok := siteConfigs[s]; !ok {
		return "", &UnsupportedSiteError{Site: s, Supported: SupportedSites()}
	}
	return s, nil
}
