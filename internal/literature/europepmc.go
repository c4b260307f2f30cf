// Package literature enriches candidates with abstracts and full text pulled
// from the Europe PMC REST API, keyed off whatever pmcid/pmid/doi
// identifiers the discovery engine already attached to a candidate.
package literature

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
)

const (
	searchURL   = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"
	fullTextURL = "https://www.ebi.ac.uk/europepmc/webservices/rest/%s/fullTextXML"
)

// Options configures an Enricher.
type Options struct {
	HTTPClient      *http.Client
	Timeout         time.Duration
	MaxPublications int
	IncludeFullText bool
	MaxFullTextChars int
}

// record is the normalized shape of a single Europe PMC search result.
type record struct {
	Title        string
	Abstract     string
	PMCID        string
	PMID         string
	DOI          string
	FullTextURLs []string
}

// Enricher fetches and caches Europe PMC records. Its caches are plain
// mutex-guarded maps owned by the struct instance; there is no
// package-level mutable state, so multiple Enrichers never interfere.
type Enricher struct {
	opts Options

	mu           sync.Mutex
	recordCache  map[string]record
	fullTextCache map[string]string
}

// New builds an Enricher, filling in defaults for zero-valued options.
func New(opts Options) *Enricher {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxPublications <= 0 {
		opts.MaxPublications = 1
	}
	if opts.MaxFullTextChars <= 0 {
		opts.MaxFullTextChars = 4000
	}
	return &Enricher{
		opts:          opts,
		recordCache:   make(map[string]record),
		fullTextCache: make(map[string]string),
	}
}

// Enrich fetches literature metadata for up to MaxPublications of c's
// publications and folds abstracts, full text, and identifiers back into c.
func (e *Enricher) Enrich(ctx context.Context, c *candidate.Candidate) {
	if len(c.Publications) == 0 {
		return
	}

	var abstracts, fullTexts, fullTextURLs []string
	var allIDs []candidate.PublicationID
	seenIDs := make(map[string]struct{})

	limit := e.opts.MaxPublications
	if limit > len(c.Publications) {
		limit = len(c.Publications)
	}
	for _, pub := range c.Publications[:limit] {
		rec, ok := e.fetchFirst(ctx, pub.IDs)
		if !ok {
			continue
		}
		if rec.Abstract != "" {
			abstracts = append(abstracts, rec.Abstract)
		}
		fullTextURLs = append(fullTextURLs, rec.FullTextURLs...)

		for _, id := range collectIdentifierStrings(rec) {
			key := strings.ToLower(id.String())
			if _, dup := seenIDs[key]; dup {
				continue
			}
			seenIDs[key] = struct{}{}
			allIDs = append(allIDs, id)
		}

		if e.opts.IncludeFullText && rec.PMCID != "" {
			if text := e.fetchFullText(ctx, rec.PMCID); text != "" {
				fullTexts = append(fullTexts, text)
			}
		}
	}

	c.PublicationAbstract = strings.Join(dedupePreserveOrder(abstracts), "\n\n")
	c.PublicationFullText = strings.Join(dedupePreserveOrder(fullTexts), "\n\n")
	if c.PublicationFullText == "" && len(fullTextURLs) > 0 {
		c.PublicationFullTextURL = fullTextURLs[0]
	}
	if len(allIDs) > 0 {
		c.PublicationIDs = allIDs
	}
}

// fetchFirst tries each identifier in priority order and returns the first
// record it can fetch successfully.
func (e *Enricher) fetchFirst(ctx context.Context, ids []candidate.PublicationID) (record, bool) {
	for _, id := range ids {
		if rec, err := e.fetchRecord(ctx, id); err == nil {
			return rec, true
		}
	}
	return record{}, false
}

func (e *Enricher) fetchRecord(ctx context.Context, id candidate.PublicationID) (record, error) {
	return e.fetchRecordAt(ctx, id, searchURL)
}

// fetchRecordAt is fetchRecord parameterized over the search endpoint, so
// tests can point it at an httptest server instead of the real API.
func (e *Enricher) fetchRecordAt(ctx context.Context, id candidate.PublicationID, base string) (record, error) {
	cacheKey := strings.ToLower(id.Kind + ":" + id.Value)
	e.mu.Lock()
	if rec, ok := e.recordCache[cacheKey]; ok {
		e.mu.Unlock()
		return rec, nil
	}
	e.mu.Unlock()

	query := queryFor(id)
	reqURL := fmt.Sprintf("%s?query=%s&format=json&resulttype=core&pageSize=1", base, url.QueryEscape(query))

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return record{}, err
	}
	resp, err := e.opts.HTTPClient.Do(req)
	if err != nil {
		return record{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return record{}, fmt.Errorf("europepmc search: status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return record{}, fmt.Errorf("decode search response: %w", err)
	}
	if len(parsed.ResultList.Result) == 0 {
		return record{}, fmt.Errorf("europepmc: no result for %s", id)
	}
	rec := toRecord(parsed.ResultList.Result[0])

	e.mu.Lock()
	e.recordCache[cacheKey] = rec
	e.mu.Unlock()
	return rec, nil
}

// queryFor builds a typed query, falling back to the untyped EXT_ID field
// for identifier kinds the search API doesn't index directly.
func queryFor(id candidate.PublicationID) string {
	switch id.Kind {
	case "pmcid":
		return "PMCID:" + id.Value
	case "pmid":
		return "EXT_ID:" + id.Value + " AND SRC:MED"
	case "doi":
		return "DOI:" + id.Value
	default:
		return "EXT_ID:" + id.Value
	}
}

type searchResponse struct {
	ResultList struct {
		Result []searchResult `json:"result"`
	} `json:"resultList"`
}

type searchResult struct {
	Title        string `json:"title"`
	AbstractText string `json:"abstractText"`
	PMCID        string `json:"pmcid"`
	PMID         string `json:"pmid"`
	DOI          string `json:"doi"`
	FullTextURLList struct {
		FullTextURL []struct {
			URL string `json:"url"`
		} `json:"fullTextUrl"`
	} `json:"fullTextUrlList"`
}

func toRecord(r searchResult) record {
	rec := record{Title: r.Title, Abstract: r.AbstractText, PMCID: r.PMCID, PMID: r.PMID, DOI: r.DOI}
	for _, u := range r.FullTextURLList.FullTextURL {
		if u.URL != "" {
			rec.FullTextURLs = append(rec.FullTextURLs, u.URL)
		}
	}
	return rec
}

func collectIdentifierStrings(rec record) []candidate.PublicationID {
	var out []candidate.PublicationID
	if rec.PMCID != "" {
		out = append(out, candidate.PublicationID{Kind: "pmcid", Value: rec.PMCID})
	}
	if rec.PMID != "" {
		out = append(out, candidate.PublicationID{Kind: "pmid", Value: rec.PMID})
	}
	if rec.DOI != "" {
		out = append(out, candidate.PublicationID{Kind: "doi", Value: rec.DOI})
	}
	return out
}

func (e *Enricher) fetchFullText(ctx context.Context, pmcid string) string {
	cacheKey := strings.ToUpper(pmcid)
	e.mu.Lock()
	if text, ok := e.fullTextCache[cacheKey]; ok {
		e.mu.Unlock()
		return text
	}
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(fullTextURL, cacheKey), nil)
	if err != nil {
		return ""
	}
	resp, err := e.opts.HTTPClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	text := xmlToText(body)
	text = normalizeWhitespace(text)
	if len(text) > e.opts.MaxFullTextChars {
		text = text[:e.opts.MaxFullTextChars]
	}

	e.mu.Lock()
	e.fullTextCache[cacheKey] = text
	e.mu.Unlock()
	return text
}

func xmlToText(body []byte) string {
	decoder := xml.NewDecoder(strings.NewReader(string(body)))
	var sb strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if charData, ok := tok.(xml.CharData); ok {
			sb.Write(charData)
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func dedupePreserveOrder(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
