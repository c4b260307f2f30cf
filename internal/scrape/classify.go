package scrape

import (
	"net/url"
	"strings"
)

// IsProbablePublicationURL reports whether u almost certainly points at a
// journal article rather than a tool's own homepage: a known publication
// host, a PMC-flavored *.nih.gov URL, or a URL carrying a DOI path segment.
func IsProbablePublicationURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, h := range PublicationHostKeywords {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	if strings.HasSuffix(host, ".nih.gov") || host == "nih.gov" {
		if strings.Contains(host, "pmc") || strings.Contains(strings.ToLower(parsed.Path), "pmc") {
			return true
		}
	}
	return DOIPathPattern.MatchString(u)
}

// CandidateHomepageURLs collects the http(s) URLs a candidate carries,
// filtering out anything that isn't plausibly fetchable, preserving order
// and removing duplicates.
func CandidateHomepageURLs(primary string, urls []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(urls)+1)
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" {
			return
		}
		lower := strings.ToLower(u)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	add(primary)
	for _, u := range urls {
		add(u)
	}
	return out
}

func hostMatches(host string, list []string) bool {
	host = strings.ToLower(host)
	for _, h := range list {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func isRepoNavigationLink(resolved *url.URL, anchorText string) bool {
	if resolved == nil || !hostMatches(resolved.Host, RepositoryHosts) {
		return false
	}
	path := strings.ToLower(resolved.Path)
	for _, p := range RepoNavPathPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	_, navText := RepoNavText[strings.ToLower(strings.TrimSpace(anchorText))]
	return navText
}
