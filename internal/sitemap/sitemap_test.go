package sitemap

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/pharmscrape/internal/scraper"
)

// mapFetcher serves canned bodies keyed by URL.
type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, url string) (scraper.Response, error) {
	body, ok := m[url]
	if !ok {
		return scraper.Response{}, &scraper.FetchError{URL: url, StatusCode: 404, Err: errors.New("Not Found")}
	}
	return scraper.Response{URL: url, StatusCode: 200, Body: []byte(body)}, nil
}

func (m mapFetcher) Close() error { return nil }
func (m mapFetcher) Type() string { return "map" }

const rootIndex = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://www.example.com/sitemap_drugs_1.xml</loc></sitemap>
  <sitemap><loc>https://www.example.com/sitemap_otc_1.xml</loc></sitemap>
  <sitemap><loc>https://www.example.com/sitemap_drugs_2.xml</loc></sitemap>
  <sitemap><loc>https://www.example.com/sitemap_labs.xml</loc></sitemap>
  <sitemap><loc>https://www.example.com/sitemap_drugs_1.xml</loc></sitemap>
</sitemapindex>`

const drugURLSet = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://www.example.com/drugs/dolo-650-tablet-74467</loc><priority>0.8</priority></url>
  <url><loc>https://www.example.com/drugs/crocin-advance-tablet-600468</loc></url>
  <url><loc>https://www.example.com/drugs/dolo-650-tablet-74467</loc></url>
</urlset>`

// --- IndexLocations Tests ---

func TestIndexLocations_FiltersByMarker(t *testing.T) {
	doc, err := Parse("root", []byte(rootIndex))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got := IndexLocations(doc, DefaultMarker)
	want := []string{
		"https://www.example.com/sitemap_drugs_1.xml",
		"https://www.example.com/sitemap_drugs_2.xml",
		"https://www.example.com/sitemap_drugs_1.xml",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("IndexLocations() mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexLocations_EmptyMarkerKeepsAll(t *testing.T) {
	doc, err := Parse("root", []byte(rootIndex))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := IndexLocations(doc, ""); len(got) != 5 {
		t.Errorf("expected 5 entries, got %d", len(got))
	}
}

func TestIndexLocations_IgnoresOtherNamespaces(t *testing.T) {
	body := `<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:x="urn:other">
  <x:sitemap><x:loc>https://www.example.com/sitemap_drugs_fake.xml</x:loc></x:sitemap>
  <sitemap><loc>https://www.example.com/sitemap_drugs_real.xml</loc></sitemap>
</sitemapindex>`
	doc, err := Parse("root", []byte(body))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"https://www.example.com/sitemap_drugs_real.xml"}
	if diff := cmp.Diff(want, IndexLocations(doc, DefaultMarker)); diff != "" {
		t.Errorf("IndexLocations() mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexLocations_NoURLEntries(t *testing.T) {
	doc, err := Parse("child", []byte(drugURLSet))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := IndexLocations(doc, ""); len(got) != 0 {
		t.Errorf("a URL set has no sitemap entries, got %v", got)
	}
}

// --- URLLocations Tests ---

func TestURLLocations_VerbatimInOrder(t *testing.T) {
	doc, err := Parse("child", []byte(drugURLSet))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{
		"https://www.example.com/drugs/dolo-650-tablet-74467",
		"https://www.example.com/drugs/crocin-advance-tablet-600468",
		"https://www.example.com/drugs/dolo-650-tablet-74467",
	}
	if diff := cmp.Diff(want, URLLocations(doc)); diff != "" {
		t.Errorf("URLLocations() mismatch (-want +got):\n%s", diff)
	}
}

func TestURLLocations_Empty(t *testing.T) {
	doc, err := Parse("child", []byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got := URLLocations(doc)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

// --- Parse Tests ---

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"mismatched tags", `<urlset><url><loc>a</loc></urlset>`},
		{"truncated", `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"><url><loc>a</loc>`},
		{"empty", ``},
		{"text only", `Service Unavailable`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("https://www.example.com/sitemap.xml", []byte(tt.body))

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if pe.URL != "https://www.example.com/sitemap.xml" {
				t.Errorf("unexpected URL %q", pe.URL)
			}
		})
	}
}

// --- Reader Tests ---

func TestReader_DrugSitemaps(t *testing.T) {
	f := mapFetcher{"https://www.example.com/sitemap.xml": rootIndex}
	r := NewReader(f, DefaultMarker)

	got, err := r.DrugSitemaps(context.Background(), "https://www.example.com/sitemap.xml")
	if err != nil {
		t.Fatalf("DrugSitemaps() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 drug sitemaps, got %d: %v", len(got), got)
	}
}

func TestReader_PageURLs(t *testing.T) {
	f := mapFetcher{"https://www.example.com/sitemap_drugs_1.xml": drugURLSet}
	r := NewReader(f, DefaultMarker)

	got, err := r.PageURLs(context.Background(), "https://www.example.com/sitemap_drugs_1.xml")
	if err != nil {
		t.Fatalf("PageURLs() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 URLs, got %d", len(got))
	}
}

func TestReader_FetchErrorPropagates(t *testing.T) {
	r := NewReader(mapFetcher{}, DefaultMarker)

	_, err := r.DrugSitemaps(context.Background(), "https://www.example.com/sitemap.xml")

	var fe *scraper.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *scraper.FetchError, got %v", err)
	}
}

func TestReader_ParseErrorPropagates(t *testing.T) {
	f := mapFetcher{"https://www.example.com/sitemap_drugs_1.xml": "<urlset><url></urlset>"}
	r := NewReader(f, DefaultMarker)

	_, err := r.PageURLs(context.Background(), "https://www.example.com/sitemap_drugs_1.xml")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}
