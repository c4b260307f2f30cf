// Package candidate defines the in-memory shapes that flow through the
// enrichment and scoring pipeline, from raw Pub2Tools JSON through to the
// bio.tools registry payload.
package candidate

import "time"

// HomepageStatus records the outcome of the homepage scraping stage for a
// single candidate. It is always set once scraping has been attempted, even
// when scraping was skipped or failed outright.
type HomepageStatus struct {
	// Scraped is true only when a homepage page (or one of its frames) was
	// fetched and parsed successfully.
	Scraped bool
	// StatusCode is 200 when the homepage fetch succeeded and zero
	// otherwise. The status of a failed HTTP response (4xx or 5xx) is not
	// recorded; such a failure sets Error to "request_error".
	StatusCode int
	// Error is a short machine-readable failure label such as "timeout",
	// "connection_error", "ssl_error", "request_error", "invalid_url",
	// "redirect_error", "filtered_publication_url", or "" on success.
	Error string
}

// Documentation is a single documentation-shaped artifact discovered on a
// candidate's homepage or frames: a link whose text or href matched one of
// the documentation keyword lists.
type Documentation struct {
	URL      string
	Keywords []string
}

// PublicationID is a normalized, typed literature identifier. Kind is one of
// "pmcid", "pmid", "doi". The original-cased Value is preserved for output;
// equality/dedup comparisons are case-insensitive.
type PublicationID struct {
	Kind  string
	Value string
}

// String renders the identifier in "kind:value" form.
func (p PublicationID) String() string {
	return p.Kind + ":" + p.Value
}

// Publication is literature metadata attached to a candidate, either as
// supplied by Pub2Tools or enriched from Europe PMC.
type Publication struct {
	IDs          []PublicationID
	Abstract     string
	FullText     string
	FullTextURLs []string
}

// Candidate is a single software-tool record moving through the pipeline.
// It is built once by LoadCandidates and then progressively enriched in place by
// later stages; nothing here is safe for concurrent mutation by more than
// one goroutine at a time.
type Candidate struct {
	ID          string
	Title       string
	Description string
	Homepage    string
	URLs        []string
	Repository  string
	Tags        []string
	PublishedAt time.Time

	Publications  []Publication
	PublicationIDs []PublicationID

	Homepage_     HomepageStatus
	Documentation []Documentation
	Keywords      []string

	PublicationAbstract     string
	PublicationFullText     string
	PublicationFullTextURL  string
}

// BioSubscores and DocumentationSubscores are the rubric's per-criterion
// breakdowns, keyed by criterion code ("A1".."A5", "B1".."B5").
type BioSubscores map[string]float64
type DocumentationSubscores map[string]float64

// Score is the model's (or the heuristic fallback's) verdict for one
// candidate, already normalized to the canonical field names and value
// ranges used throughout the rest of the pipeline.
type Score struct {
	ToolName            string
	Homepage            string
	PublicationIDs      []PublicationID
	BioScore            float64
	BioSubscores        BioSubscores
	// DocumentationScore is the single weighted documentation value (B1 and
	// B5 carry double weight over B2-B4, denominator 7); nothing else is
	// exposed as "the" documentation score.
	DocumentationScore  float64
	DocumentationSubscores DocumentationSubscores
	ConfidenceScore     float64
	ConciseDescription  string
	Rationale           string

	// Model records the generative model name used, or "heuristic" when the
	// score came from the deterministic fallback scorer.
	Model string
	// OriginTypes records, per prompt field, whether the value present in
	// the prompt came from the candidate's own data ("candidate") or was
	// absent ("missing"). Used for downstream auditing only.
	OriginTypes map[string]string
	// SchemaRetries is the number of additional attempts beyond the first
	// that were needed before the model produced a schema-valid response.
	SchemaRetries int
	// ModelParams carries the retry manager's per-candidate diagnostics
	// (attempts, schema_errors, prompt_augmented) for audit; nil when the
	// heuristic fallback scored this candidate.
	ModelParams map[string]any
}

// Decision is the final include/exclude verdict for a candidate, derived
// from its Score against the configured thresholds.
type Decision struct {
	Candidate Candidate
	Score     Score
	Homepage  string
	Include   bool
}
