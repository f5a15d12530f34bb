// Package bookmarks parses browser bookmark exports. Netscape-style
// bookmark files are HTML documents full of anchor tags; anything with a
// resolvable href and non-empty link text becomes a record.
package bookmarks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/marklens/marklens/engine/item"
)

// ParseFile reads and parses a bookmark export from disk.
func ParseFile(path string) ([]item.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bookmarks: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse extracts bookmark records from anchor tags. Anchors with no href
// or no text are dropped, not nulled.
func Parse(r io.Reader) ([]item.Record, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("bookmarks: parse html: %w", err)
	}

	var records []item.Record
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			rec := item.Record{
				Title:  strings.TrimSpace(text(n)),
				URL:    strings.TrimSpace(attr(n, "href")),
				Source: "",
			}
			rec.Source = item.Domain(rec.URL)
			if rec.Valid() {
				records = append(records, rec)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return records, nil
}

// text concatenates all text nodes under n.
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
