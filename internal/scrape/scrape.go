// Package scrape fetches a candidate's homepage (and any frames it embeds)
// and extracts documentation-shaped links from the surrounding HTML, in the
// manner of a lightweight, keyword-driven readability pass rather than a
// full-text extractor.
package scrape

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/fetch"
)

const (
	// DefaultMaxBytes bounds how much of a homepage response body is
	// materialized, guarding against pathological multi-gigabyte pages.
	DefaultMaxBytes = 2_000_000
	// DefaultMaxFrameFetches bounds the number of <frame>/<iframe> targets
	// followed while crawling a homepage for additional metadata.
	DefaultMaxFrameFetches = 5
	// DefaultMaxFrameDepth bounds how many levels of nested frames are
	// followed.
	DefaultMaxFrameDepth = 2
)

// Result is the metadata harvested from a homepage and its frames.
type Result struct {
	Documentation []candidate.Documentation
	Keywords      []string
	Repository    string
}

// Options configures a Scraper's fetch policy and crawl bounds.
type Options struct {
	Client          *fetch.Client
	UserAgent       string
	MaxBytes        int64
	MaxFrameFetches int
	MaxFrameDepth   int
}

// Scraper fetches homepages and extracts documentation metadata from them.
type Scraper struct {
	opts Options
}

// New builds a Scraper, filling in defaults for any zero-valued bound.
func New(opts Options) *Scraper {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxFrameFetches <= 0 {
		opts.MaxFrameFetches = DefaultMaxFrameFetches
	}
	if opts.MaxFrameDepth <= 0 {
		opts.MaxFrameDepth = DefaultMaxFrameDepth
	}
	if opts.Client != nil && opts.Client.MaxBodyBytes <= 0 {
		opts.Client.MaxBodyBytes = opts.MaxBytes
	}
	return &Scraper{opts: opts}
}

// Scrape selects the best candidate homepage URL, fetches it, classifies any
// failure, and merges documentation metadata from the page and its frames
// into c in place. It always sets c.Homepage_ once it returns.
func (s *Scraper) Scrape(ctx context.Context, c *candidate.Candidate) {
	urls := CandidateHomepageURLs(c.Homepage, c.URLs)
	if len(urls) == 0 {
		c.Homepage_ = candidate.HomepageStatus{Error: "no_homepage"}
		return
	}

	primary := urls[0]
	if IsProbablePublicationURL(primary) {
		alt := firstNonPublication(urls[1:])
		if alt == "" {
			c.Homepage = ""
			c.Homepage_ = candidate.HomepageStatus{Error: "filtered_publication_url"}
			return
		}
		primary = alt
	}
	c.Homepage = primary

	body, status, failLabel := s.fetchOne(ctx, primary)
	if failLabel != "" {
		c.Homepage_ = candidate.HomepageStatus{StatusCode: status, Error: failLabel}
		return
	}
	if status >= 400 {
		c.Homepage_ = candidate.HomepageStatus{StatusCode: status, Error: "request_error"}
		return
	}

	result := extractMetadata(body, primary)
	frameResult := s.crawlFrames(ctx, body, primary)
	mergeResult(&result, frameResult)

	c.Documentation = append(c.Documentation, result.Documentation...)
	c.Keywords = dedupeKeywords(append(c.Keywords, result.Keywords...))
	if c.Repository == "" {
		c.Repository = result.Repository
	}
	c.Homepage_ = candidate.HomepageStatus{Scraped: true, StatusCode: status}
}

func firstNonPublication(urls []string) string {
	for _, u := range urls {
		if !IsProbablePublicationURL(u) {
			return u
		}
	}
	return ""
}

// fetchOne fetches u and classifies any failure into the same short labels
// the scoring prompt surfaces as "homepage_error".
func (s *Scraper) fetchOne(ctx context.Context, u string) (body []byte, status int, failLabel string) {
	client := s.opts.Client
	if client == nil {
		return nil, 0, "request_error"
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return nil, 0, "invalid_url"
	}

	b, _, err := client.Get(ctx, u)
	if err != nil {
		return nil, 0, classifyFetchError(err)
	}
	return b, 200, ""
}

func classifyFetchError(err error) string {
	switch {
	case errors.Is(err, fetch.ErrContentTooLarge):
		return "content_too_large"
	case errors.Is(err, fetch.ErrUnsupportedContentType):
		return "non_html_content"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline") || strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "tls") || strings.Contains(msg, "certificate") || strings.Contains(msg, "x509"):
		return "ssl_error"
	case strings.Contains(msg, "too many redirects"):
		return "redirect_error"
	case strings.Contains(msg, "unsupported url") || strings.Contains(msg, "unsupported scheme"):
		return "invalid_url"
	case strings.Contains(msg, "no such host") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset"):
		return "connection_error"
	default:
		return "request_error"
	}
}

// extractMetadata walks the anchors in an HTML document, classifying each
// as a repository link, a documentation link, or page chrome to discard.
func extractMetadata(body []byte, baseURL string) Result {
	base, _ := url.Parse(baseURL)
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return Result{}
	}

	var result Result
	seen := make(map[string]struct{})
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			text := collectText(n)
			if href != "" && href != "#" {
				resolved := resolveURL(base, href)
				if resolved != nil {
					handleAnchor(&result, resolved, href, text, n, seen)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return result
}

func handleAnchor(result *Result, resolved *url.URL, href, text string, node *html.Node, seen map[string]struct{}) {
	resolvedStr := resolved.String()
	textLower := strings.ToLower(strings.TrimSpace(text))
	hrefLower := strings.ToLower(href)

	if hostMatches(resolved.Host, RepositoryHosts) {
		if result.Repository == "" && !isRepoNavigationLink(resolved, text) {
			result.Repository = resolvedStr
		}
		if isRepoNavigationLink(resolved, text) {
			return
		}
	}

	keywords := matchDocumentationKeywords(textLower, hrefLower)
	if len(keywords) == 0 {
		return
	}
	if isLayoutAncestor(node, 4) {
		return
	}
	if _, ok := seen[resolvedStr]; ok {
		return
	}
	seen[resolvedStr] = struct{}{}
	result.Documentation = append(result.Documentation, candidate.Documentation{URL: resolvedStr, Keywords: keywords})
	result.Keywords = append(result.Keywords, keywords...)
}

func matchDocumentationKeywords(textLower, hrefLower string) []string {
	var matched []string
	for _, kw := range DocumentationKeywords {
		if strings.Contains(textLower, kw) || strings.Contains(hrefLower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// isLayoutAncestor walks up to maxDepth parents looking for a nav/header/
// footer/aside tag or a class/id/role/aria-label carrying a chrome keyword.
func isLayoutAncestor(n *html.Node, maxDepth int) bool {
	cur := n.Parent
	for depth := 0; cur != nil && depth < maxDepth; depth, cur = depth+1, cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if _, ok := LayoutParentTags[cur.Data]; ok {
			return true
		}
		for _, a := range cur.Attr {
			if a.Key != "class" && a.Key != "id" && a.Key != "role" && a.Key != "aria-label" && !strings.HasPrefix(a.Key, "data-") {
				continue
			}
			valLower := strings.ToLower(a.Val)
			for _, kw := range LayoutAttrKeywords {
				if strings.Contains(valLower, kw) {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	if base == nil {
		return ref
	}
	return base.ResolveReference(ref)
}

// frameTask is one item of the frame-crawl BFS queue.
type frameTask struct {
	url   string
	depth int
}

// crawlFrames discovers <frame>/<iframe> targets in body and fetches each
// (bounded by MaxFrameFetches/MaxFrameDepth), merging their own documentation
// metadata in turn.
func (s *Scraper) crawlFrames(ctx context.Context, body []byte, baseURL string) Result {
	base, _ := url.Parse(baseURL)
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return Result{}
	}

	var merged Result
	visited := map[string]struct{}{baseURL: {}}
	queue := discoverFrameTasks(doc, base, 1)

	fetched := 0
	for len(queue) > 0 && fetched < s.opts.MaxFrameFetches {
		task := queue[0]
		queue = queue[1:]
		if task.depth > s.opts.MaxFrameDepth {
			continue
		}
		if _, ok := visited[task.url]; ok {
			continue
		}
		visited[task.url] = struct{}{}

		frameBody, status, failLabel := s.fetchOne(ctx, task.url)
		fetched++
		if failLabel != "" || status >= 400 {
			continue
		}
		frameBase, _ := url.Parse(task.url)
		result := extractMetadata(frameBody, task.url)
		mergeResult(&merged, result)

		frameDoc, err := html.Parse(strings.NewReader(string(frameBody)))
		if err != nil {
			continue
		}
		queue = append(queue, discoverFrameTasks(frameDoc, frameBase, task.depth+1)...)
	}
	return merged
}

func discoverFrameTasks(doc *html.Node, base *url.URL, depth int) []frameTask {
	var tasks []frameTask
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "frame" || n.Data == "iframe") {
			if src := attr(n, "src"); src != "" {
				if resolved := resolveURL(base, src); resolved != nil {
					tasks = append(tasks, frameTask{url: resolved.String(), depth: depth})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tasks
}

func mergeResult(into *Result, addition Result) {
	seen := make(map[string]struct{}, len(into.Documentation))
	for _, d := range into.Documentation {
		seen[d.URL] = struct{}{}
	}
	for _, d := range addition.Documentation {
		if _, ok := seen[d.URL]; ok {
			continue
		}
		seen[d.URL] = struct{}{}
		into.Documentation = append(into.Documentation, d)
	}
	into.Keywords = dedupeKeywords(append(into.Keywords, addition.Keywords...))
	if into.Repository == "" {
		into.Repository = addition.Repository
	}
}

func dedupeKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
