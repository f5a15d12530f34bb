// Package item defines the record shape shared by bookmark parsing and
// candidate scraping.
package item

import "strings"

// Record is one piece of content: a saved bookmark or a scraped candidate.
type Record struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// Valid reports whether the record carries the minimum required fields.
func (r Record) Valid() bool {
	return r.Title != "" && r.URL != ""
}

// Domain extracts the host portion of a URL for use as a source tag.
// Scheme and a leading "www." are stripped; a URL with no scheme falls
// back to its first path segment. Empty input yields "Unknown Source".
func Domain(rawURL string) string {
	if rawURL == "" {
		return "Unknown Source"
	}
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "Unknown Source"
	}
	return s
}
