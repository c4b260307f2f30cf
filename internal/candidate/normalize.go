package candidate

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeTitle collapses whitespace, NFKC-folds, and lowercases a title so
// that two visually-equal titles compare equal regardless of Unicode
// composition or incidental spacing.
func NormalizeTitle(title string) string {
	folded := norm.NFKC.String(strings.TrimSpace(title))
	folded = whitespaceRun.ReplaceAllString(folded, " ")
	return strings.ToLower(folded)
}

// NormalizeURL rewrites protocol-relative URLs ("//example.org/x") to
// explicit https URLs, leaving already-absolute URLs untouched.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

func isHTTPURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// rawCandidate mirrors the loosely-typed JSON shape emitted by the
// discovery engine: field presence and types are not guaranteed, so every
// field is decoded permissively and validated by hand.
type rawCandidate struct {
	Name        any `json:"name"`
	Title       any `json:"title"`
	Description any `json:"description"`
	Homepage    any `json:"homepage"`
	URLs        any `json:"urls"`
	Repository  any `json:"repository"`
	Tags        any `json:"tags"`
	Topic       any `json:"topic"`
	Data        any `json:"data"`
	Operation   any `json:"operation"`
	Format      any `json:"format"`
	Function    any `json:"function"`
	PublishedAt any `json:"published_at"`
	Publication any `json:"publication"`
	Publications any `json:"publications"`
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case nil:
		return ""
	default:
		return ""
	}
}

func asStringSlice(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			switch s := item.(type) {
			case string:
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				// EDAM-style {"term": "..."} entries, as seen in "topic".
				if term, ok := s["term"].(string); ok {
					if term = strings.TrimSpace(term); term != "" {
						out = append(out, term)
					}
				}
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var edamTermKeys = []string{"term", "label", "name"}

// collectEDAMTerms recursively pulls term/label/name strings out of an EDAM
// annotation value, which may be a bare string, a {"term": "..."} object, or
// a list nesting either.
func collectEDAMTerms(value any) []string {
	switch v := value.(type) {
	case map[string]any:
		for _, k := range edamTermKeys {
			if s, ok := v[k].(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return []string{s}
				}
			}
		}
		return nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
		return nil
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, collectEDAMTerms(item)...)
		}
		return out
	default:
		return nil
	}
}

// mergeEDAMTags folds EDAM annotation terms from topic/data/operation/format
// and each function's operation and input/output ports into tags, keeping
// the first-seen casing of any term already present or repeated later.
func mergeEDAMTags(tags []string, rc rawCandidate) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	add := func(term string) {
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, term)
	}
	for _, t := range tags {
		add(t)
	}
	for _, field := range []any{rc.Topic, rc.Data, rc.Operation, rc.Format} {
		for _, term := range collectEDAMTerms(field) {
			add(term)
		}
	}
	funcs, _ := rc.Function.([]any)
	for _, f := range funcs {
		fm, ok := f.(map[string]any)
		if !ok {
			continue
		}
		for _, term := range collectEDAMTerms(fm["operation"]) {
			add(term)
		}
		for _, portKey := range []string{"input", "output"} {
			ports, _ := fm[portKey].([]any)
			for _, p := range ports {
				pm, ok := p.(map[string]any)
				if !ok {
					continue
				}
				for _, term := range collectEDAMTerms(pm["data"]) {
					add(term)
				}
				for _, term := range collectEDAMTerms(pm["format"]) {
					add(term)
				}
			}
		}
	}
	return out
}

// LoadCandidates decodes a Pub2Tools export: either a bare JSON array of
// candidate objects, or an object with a "list" key wrapping that array.
func LoadCandidates(data []byte) ([]Candidate, error) {
	trimmed := strings.TrimSpace(string(data))
	var rawItems []json.RawMessage
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &rawItems); err != nil {
			return nil, fmt.Errorf("decode candidate array: %w", err)
		}
	} else {
		var wrapper struct {
			List []json.RawMessage `json:"list"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("decode candidate wrapper: %w", err)
		}
		rawItems = wrapper.List
	}

	candidates := make([]Candidate, 0, len(rawItems))
	for i, item := range rawItems {
		c, err := normalizeOne(item)
		if err != nil {
			continue
		}
		if strings.TrimSpace(c.Title) == "" {
			continue
		}
		if c.ID == "" {
			c.ID = fallbackID(item, i)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func fallbackID(raw json.RawMessage, index int) string {
	h := sha1.Sum(raw)
	return fmt.Sprintf("c%d-%s", index, hex.EncodeToString(h[:])[:8])
}

func normalizeOne(raw json.RawMessage) (Candidate, error) {
	var rc rawCandidate
	if err := json.Unmarshal(raw, &rc); err != nil {
		return Candidate{}, err
	}

	title := asString(rc.Title)
	if title == "" {
		title = asString(rc.Name)
	}

	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)
	id := ""
	for _, k := range []string{"id", "tool_id", "biotools_id", "biotoolsID", "identifier"} {
		if id = asString(fields[k]); id != "" {
			break
		}
	}

	var urls []string
	if home := asString(rc.Homepage); home != "" {
		urls = append(urls, NormalizeURL(home))
	}
	urls = append(urls, normalizeURLs(asStringSlice(rc.URLs))...)

	homepage := ""
	for _, u := range urls {
		if isHTTPURL(u) {
			homepage = u
			break
		}
	}

	tags := mergeEDAMTags(asStringSlice(rc.Tags), rc)

	var publishedAt time.Time
	if s := asString(rc.PublishedAt); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			publishedAt = t
		} else if t, err := time.Parse("2006-01-02", s); err == nil {
			publishedAt = t
		}
	}

	c := Candidate{
		ID:          id,
		Title:       title,
		Description: asString(rc.Description),
		Homepage:    homepage,
		URLs:        dedupeStrings(urls),
		Repository:  asString(rc.Repository),
		Tags:        dedupeStrings(tags),
		PublishedAt: publishedAt,
	}
	c.Publications = extractPublications(rc.Publication, rc.Publications)
	return c, nil
}

func normalizeURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, u := range in {
		out = append(out, NormalizeURL(u))
	}
	return out
}

func dedupeStrings(in []string) []string {
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

func extractPublications(single any, list any) []Publication {
	var raws []any
	if single != nil {
		raws = append(raws, single)
	}
	if arr, ok := list.([]any); ok {
		raws = append(raws, arr...)
	}
	pubs := make([]Publication, 0, len(raws))
	for _, r := range raws {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		pubs = append(pubs, Publication{IDs: selectIdentifiers(m)})
	}
	return pubs
}

// selectIdentifiers pulls pmcid/pmid/doi out of a publication map under any
// of the common key-casing variants, in priority order pmcid > pmid > doi.
func selectIdentifiers(m map[string]any) []PublicationID {
	lookup := func(keys ...string) string {
		for _, k := range keys {
			for mk, mv := range m {
				if strings.EqualFold(mk, k) {
					if s, ok := mv.(string); ok && strings.TrimSpace(s) != "" {
						return strings.TrimSpace(s)
					}
				}
			}
		}
		return ""
	}
	var ids []PublicationID
	if v := lookup("pmcid", "pmc_id"); v != "" {
		ids = append(ids, PublicationID{Kind: "pmcid", Value: v})
	}
	if v := lookup("pmid", "pm"); v != "" {
		ids = append(ids, PublicationID{Kind: "pmid", Value: v})
	}
	if v := lookup("doi"); v != "" {
		ids = append(ids, PublicationID{Kind: "doi", Value: v})
	}
	return ids
}

// DedupeKey returns the case-insensitive key used to deduplicate candidates:
// normalized title joined with the primary homepage.
func DedupeKey(c Candidate) string {
	return NormalizeTitle(c.Title) + "|" + strings.ToLower(c.Homepage)
}

// Deduplicate removes later candidates whose DedupeKey collides with an
// earlier one; the first occurrence wins.
func Deduplicate(in []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		key := DedupeKey(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
