// Package sitemap reads sitemap-protocol documents: the root sitemap index
// and the per-section URL sets it points at.
package sitemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/jmylchreest/pharmscrape/internal/logger"
	"github.com/jmylchreest/pharmscrape/internal/scraper"
)

// Namespace is the sitemap protocol XML namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// DefaultMarker identifies drug sitemaps among the index entries.
const DefaultMarker = "sitemap_drugs"

var (
	sitemapLocExpr = mustCompile("//sm:sitemap/sm:loc")
	urlLocExpr     = mustCompile("//sm:url/sm:loc")
)

func mustCompile(expr string) *xpath.Expr {
	e, err := xpath.CompileWithNS(expr, map[string]string{"sm": Namespace})
	if err != nil {
		panic(fmt.Sprintf("sitemap: invalid xpath %q: %v", expr, err))
	}
	return e
}

// ParseError reports a sitemap document that is not well-formed XML.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNoRoot = errors.New("document has no root element")

// FetchXML fetches url and parses the body as XML.
// Transport failures come back as *scraper.FetchError, malformed XML as *ParseError.
func FetchXML(ctx context.Context, f scraper.Fetcher, url string) (*xmlquery.Node, error) {
	resp, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(url, resp.Body)
}

// Parse parses a sitemap body. url is only used for error reporting.
func Parse(url string, body []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: url, Err: err}
	}
	if !hasRootElement(doc) {
		return nil, &ParseError{URL: url, Err: errNoRoot}
	}
	return doc, nil
}

func hasRootElement(doc *xmlquery.Node) bool {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

// IndexLocations returns the <sitemap><loc> texts of an index document that
// contain marker, in document order. An empty marker keeps every entry.
func IndexLocations(doc *xmlquery.Node, marker string) []string {
	var locs []string
	for _, n := range xmlquery.QuerySelectorAll(doc, sitemapLocExpr) {
		loc := n.InnerText()
		if strings.Contains(loc, marker) {
			locs = append(locs, loc)
		}
	}
	return locs
}

// URLLocations returns every <url><loc> text of a URL set, verbatim and in
// document order.
func URLLocations(doc *xmlquery.Node) []string {
	nodes := xmlquery.QuerySelectorAll(doc, urlLocExpr)
	locs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		locs = append(locs, n.InnerText())
	}
	return locs
}

// Reader walks a site's sitemap hierarchy.
type Reader struct {
	fetcher scraper.Fetcher
	marker  string
}

// NewReader creates a Reader selecting index entries that contain marker.
func NewReader(f scraper.Fetcher, marker string) *Reader {
	return &Reader{fetcher: f, marker: marker}
}

// DrugSitemaps returns the child sitemap URLs of the index at rootURL that
// contain the reader's marker. Duplicates are kept.
func (r *Reader) DrugSitemaps(ctx context.Context, rootURL string) ([]string, error) {
	doc, err := FetchXML(ctx, r.fetcher, rootURL)
	if err != nil {
		return nil, err
	}
	locs := IndexLocations(doc, r.marker)
	logger.Debug("sitemap index read", "url", rootURL, "marker", r.marker, "matched", len(locs))
	return locs, nil
}

// PageURLs returns every page URL listed in the sitemap at sitemapURL.
func (r *Reader) PageURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	doc, err := FetchXML(ctx, r.fetcher, sitemapURL)
	if err != nil {
		return nil, err
	}
	locs := URLLocations(doc)
	logger.Debug("sitemap read", "url", sitemapURL, "urls", len(locs))
	return locs, nil
}
