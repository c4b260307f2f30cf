package score

import (
	"strings"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/prompt"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/scrape"
)

// documentationWeights gives B1 and B5 extra weight relative to B2-B4 when
// computing the weighted documentation score; the denominator is the sum of
// all weights.
var documentationWeights = map[string]float64{
	"B1": 2.0, "B2": 1.0, "B3": 1.0, "B4": 1.0, "B5": 2.0,
}

func average(m map[string]float64, keys []string) float64 {
	if len(m) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, k := range keys {
		if v, ok := m[k]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func weightedDocumentationScore(breakdown map[string]float64, fallback float64) float64 {
	if len(breakdown) == 0 {
		return fallback
	}
	var sum, denom float64
	for key, weight := range documentationWeights {
		if v, ok := breakdown[key]; ok {
			sum += v * weight
		}
		denom += weight
	}
	if denom == 0 {
		return fallback
	}
	return sum / denom
}

// Normalize turns a validated model response into a candidate.Score, filling
// in fallbacks from c wherever the response omits or under-specifies a
// field, and resolving the candidate's own homepage when the response's
// homepage looks like a publication URL.
func Normalize(response map[string]any, c candidate.Candidate, model string, schemaRetries int) candidate.Score {
	bio := CoerceSubscoreContainer(response["bio_subscores"], prompt.BioKeys[:])
	doc := CoerceSubscoreContainer(response["documentation_subscores"], prompt.DocKeys[:])

	bioAvg := ClampScore(average(bio, prompt.BioKeys[:]))
	docAvg := ClampScore(average(doc, prompt.DocKeys[:]))
	docWeighted := ClampScore(weightedDocumentationScore(doc, docAvg))

	confidence := 0.0
	if f, ok := CoerceFloat(response["confidence_score"]); ok {
		confidence = ClampScore(f)
	}

	toolName, _ := response["tool_name"].(string)
	if strings.TrimSpace(toolName) == "" {
		toolName = c.Title
	}
	concise, _ := response["concise_description"].(string)
	rationale, _ := response["rationale"].(string)

	homepage, _ := response["homepage"].(string)
	if homepage == "" || scrape.IsProbablePublicationURL(homepage) {
		homepage = preferredCandidateHomepage(c)
	}

	ids := publicationIDsFrom(response, c)

	return candidate.Score{
		ToolName:               toolName,
		Homepage:               homepage,
		PublicationIDs:         ids,
		BioScore:               bioAvg,
		BioSubscores:           candidate.BioSubscores(bio),
		DocumentationScore:     docWeighted,
		DocumentationSubscores: candidate.DocumentationSubscores(doc),
		ConfidenceScore:        confidence,
		ConciseDescription:     concise,
		Rationale:              rationale,
		Model:                  model,
		OriginTypes:            prompt.OriginTypes(c),
		SchemaRetries:          schemaRetries,
	}
}

func preferredCandidateHomepage(c candidate.Candidate) string {
	if c.Homepage != "" && !scrape.IsProbablePublicationURL(c.Homepage) {
		return c.Homepage
	}
	for _, u := range c.URLs {
		if !scrape.IsProbablePublicationURL(u) {
			return u
		}
	}
	return c.Homepage
}

func publicationIDsFrom(response map[string]any, c candidate.Candidate) []candidate.PublicationID {
	raw, ok := response["publication_ids"].([]any)
	if !ok || len(raw) == 0 {
		return c.PublicationIDs
	}
	var ids []candidate.PublicationID
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		kind, value, found := strings.Cut(s, ":")
		if !found {
			continue
		}
		ids = append(ids, candidate.PublicationID{Kind: strings.ToLower(kind), Value: value})
	}
	if len(ids) == 0 {
		return c.PublicationIDs
	}
	return ids
}
