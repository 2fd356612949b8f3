package drugpage

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/pharmscrape/internal/logger"
	"github.com/jmylchreest/pharmscrape/internal/scraper"
)

const (
	marketerLabel      = "Marketer"
	saltLabel          = "SALT COMPOSITION"
	prescriptionMarker = "Prescription Required"
	saltSeparator      = " + "

	// Labels and value blocks on product pages are divs.
	blockTag = "div"
	linkTag  = "a"
)

// Scraper fetches product pages and extracts a Record from each.
type Scraper struct {
	fetcher scraper.Fetcher
}

// NewScraper creates a Scraper using f for page fetches.
func NewScraper(f scraper.Fetcher) *Scraper {
	return &Scraper{fetcher: f}
}

// Scrape fetches url and extracts its Record. The only possible error is the
// fetch failure; extraction degrades to empty fields instead of failing.
func (s *Scraper) Scrape(ctx context.Context, url string) (Record, error) {
	resp, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return Record{}, err
	}
	return ParseHTML(resp.Body), nil
}

// ParseHTML extracts a Record from a product page body. Malformed markup is
// tolerated.
func ParseHTML(body []byte) Record {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logger.Debug("html parse failed", "error", err)
		return Record{PrescriptionRequired: "No"}
	}
	return Extract(doc)
}

// Extract applies every field rule to doc. Each rule is independent.
func Extract(doc *goquery.Document) Record {
	return Record{
		DrugName:             extractName(doc),
		Marketer:             extractMarketer(doc),
		SaltComposition:      extractSaltComposition(doc),
		PrescriptionRequired: extractPrescriptionRequired(doc),
	}
}

// extractName returns the trimmed text of the first h1.
func extractName(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// extractMarketer returns the first link after the "Marketer" label.
func extractMarketer(doc *goquery.Document) string {
	label := findLabel(doc, marketerLabel)
	if label == nil {
		return ""
	}
	link := nextElement(label, linkTag)
	if link == nil {
		return ""
	}
	return strings.TrimSpace(doc.FindNodes(link).Text())
}

// extractSaltComposition joins the links of the block after the
// "SALT COMPOSITION" label.
func extractSaltComposition(doc *goquery.Document) string {
	label := findLabel(doc, saltLabel)
	if label == nil {
		return ""
	}
	block := nextElement(label, blockTag)
	if block == nil {
		return ""
	}

	var salts []string
	doc.FindNodes(block).Find(linkTag).Each(func(_ int, s *goquery.Selection) {
		salts = append(salts, strings.TrimSpace(s.Text()))
	})
	return strings.Join(salts, saltSeparator)
}

// extractPrescriptionRequired scans every text node for the prescription marker.
func extractPrescriptionRequired(doc *goquery.Document) string {
	for _, root := range doc.Nodes {
		for n := root; n != nil; n = following(n, root) {
			if n.Type == html.TextNode && strings.Contains(n.Data, prescriptionMarker) {
				return "Yes"
			}
		}
	}
	return "No"
}

// findLabel returns the first block whose own text (not its descendants')
// contains label.
func findLabel(doc *goquery.Document, label string) *html.Node {
	var found *html.Node
	doc.Find(blockTag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n := s.Get(0)
		if strings.Contains(directText(n), label) {
			found = n
			return false
		}
		return true
	})
	return found
}

func directText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// nextElement returns the first element named tag after n in document order,
// descendants of n included.
func nextElement(n *html.Node, tag string) *html.Node {
	for c := following(n, nil); c != nil; c = following(c, nil) {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

// following returns the node after n in a pre-order walk, not leaving root.
// A nil root walks to the end of the document.
func following(n, root *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil && n != root; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}
