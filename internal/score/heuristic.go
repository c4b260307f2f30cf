package score

import (
	"strings"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
)

var bioKeywordHints = []string{"gene", "genom", "bio", "genomics", "bioinformatics", "proteomics", "metabolomics"}

// Heuristic produces a deterministic score shaped identically to a model
// response, used when the model host is unreachable for the run. It never
// calls the network and never errors.
func Heuristic(c candidate.Candidate) candidate.Score {
	titleLower := strings.ToLower(c.Title)
	tagsLower := strings.ToLower(strings.Join(c.Tags, " "))

	bioHit := false
	for _, kw := range bioKeywordHints {
		if strings.Contains(titleLower, kw) || strings.Contains(tagsLower, kw) {
			bioHit = true
			break
		}
	}

	bioScore := 0.4
	if bioHit {
		bioScore = 0.8
	}
	docScore := 0.1
	if c.Homepage != "" {
		docScore = 0.8
	}

	concise := c.Description
	if len(concise) > 280 {
		concise = concise[:280]
	}

	return candidate.Score{
		ToolName:           c.Title,
		Homepage:           c.Homepage,
		PublicationIDs:     c.PublicationIDs,
		BioScore:           bioScore,
		DocumentationScore: docScore,
		ConfidenceScore:    0.2,
		ConciseDescription: strings.TrimSpace(concise),
		Rationale:          "heuristic pre-LLM scoring",
		Model:              "heuristic",
	}
}
