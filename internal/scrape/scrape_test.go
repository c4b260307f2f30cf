package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/fetch"
)

func TestIsProbablePublicationURL(t *testing.T) {
	cases := map[string]bool{
		"https://doi.org/10.1000/xyz123":                 true,
		"https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1": true,
		"https://example.org/tool":                       false,
		"https://example.org/paper/10.1234/abcd.5678":    true,
	}
	for u, want := range cases {
		if got := IsProbablePublicationURL(u); got != want {
			t.Errorf("IsProbablePublicationURL(%q) = %v, want %v", u, got, want)
		}
	}
}

func TestExtractMetadataFindsDocumentationLinks(t *testing.T) {
	htmlDoc := `<html><body>
		<nav><a href="/issues">Issues</a></nav>
		<main>
			<a href="/docs/install">Installation guide</a>
			<a href="https://github.com/org/tool">Source code</a>
			<a href="/about">About</a>
		</main>
	</body></html>`
	result := extractMetadata([]byte(htmlDoc), "https://example.org/")
	if len(result.Documentation) != 1 {
		t.Fatalf("got %d documentation links, want 1: %+v", len(result.Documentation), result.Documentation)
	}
	if result.Documentation[0].URL != "https://example.org/docs/install" {
		t.Fatalf("unexpected documentation URL: %q", result.Documentation[0].URL)
	}
	if result.Repository != "https://github.com/org/tool" {
		t.Fatalf("unexpected repository: %q", result.Repository)
	}
}

func TestScrapeFiltersPublicationHomepage(t *testing.T) {
	s := New(Options{Client: &fetch.Client{}})
	c := &candidate.Candidate{Homepage: "https://doi.org/10.1000/xyz"}
	s.Scrape(context.Background(), c)
	if c.Homepage_.Error != "filtered_publication_url" {
		t.Fatalf("got error %q, want filtered_publication_url", c.Homepage_.Error)
	}
}

func TestScrapeFetchesHomepageAndSetsScraped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/docs">Documentation</a></body></html>`))
	}))
	defer srv.Close()

	s := New(Options{Client: &fetch.Client{MaxAttempts: 1}})
	c := &candidate.Candidate{Homepage: srv.URL}
	s.Scrape(context.Background(), c)
	if !c.Homepage_.Scraped {
		t.Fatalf("expected Scraped=true, got %+v", c.Homepage_)
	}
	if len(c.Documentation) != 1 {
		t.Fatalf("expected 1 documentation link, got %d", len(c.Documentation))
	}
}

func TestScrapeClassifiesNonHTMLContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	s := New(Options{Client: &fetch.Client{MaxAttempts: 1}})
	c := &candidate.Candidate{Homepage: srv.URL}
	s.Scrape(context.Background(), c)
	if c.Homepage_.Error != "non_html_content" {
		t.Fatalf("got error %q, want non_html_content", c.Homepage_.Error)
	}
}

func TestScrapeClassifiesContentTooLargeWithoutBufferingFullBody(t *testing.T) {
	oversized := strings.Repeat("a", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(oversized))
	}))
	defer srv.Close()

	s := New(Options{Client: &fetch.Client{MaxAttempts: 1}, MaxBytes: 100})
	c := &candidate.Candidate{Homepage: srv.URL}
	s.Scrape(context.Background(), c)
	if c.Homepage_.Error != "content_too_large" {
		t.Fatalf("got error %q, want content_too_large", c.Homepage_.Error)
	}
}
