package scrape

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/marklens/marklens/engine/item"
)

// parseResults extracts candidate records from a site's search-results
// markup using the site's selector spec. Records missing a title or URL
// are dropped here rather than passed downstream.
func parseResults(body string, cfg siteConfig, site Site) []item.Record {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var records []item.Record
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == cfg.selector.Tag && matches(n, cfg.selector) {
			href := nodeAttr(n, "href")
			rec := item.Record{
				Title:  title(n, cfg.selector),
				URL:    absolutize(href, cfg.baseURL),
				Source: string(site),
			}
			if rec.Valid() {
				records = append(records, rec)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return records
}

func matches(n *html.Node, sel selectorSpec) bool {
	if sel.Class != "" && !hasClass(n, sel.Class) {
		return false
	}
	if sel.HrefPrefix != "" && !strings.HasPrefix(nodeAttr(n, "href"), sel.HrefPrefix) {
		return false
	}
	return true
}

func title(n *html.Node, sel selectorSpec) string {
	if sel.TitleAttr != "" {
		if t := strings.TrimSpace(nodeAttr(n, sel.TitleAttr)); t != "" {
			return t
		}
	}
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
	return strings.TrimSpace(b.String())
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(nodeAttr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func nodeAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func absolutize(href, base string) string {
	if href == "" || strings.Contains(href, "://") {
		return href
	}
	return base + href
}
