// Package report renders pipeline decisions into the bio.tools registry
// payload plus the JSONL and CSV run reports, and an optional one-page PDF
// summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
)

// Documentation is one documentation link in a registry entry.
type Documentation struct {
	URL  string   `json:"url"`
	Type []string `json:"type"`
}

// Publication is one literature reference in a registry entry.
type Publication struct {
	DOI   string `json:"doi,omitempty"`
	PMID  string `json:"pmid,omitempty"`
	PMCID string `json:"pmcid,omitempty"`
}

// Entry is the subset of the bio.tools registry schema this pipeline
// populates. Fields the pipeline has no opinion on (credit, function,
// topic, ...) are intentionally absent rather than emitted empty.
type Entry struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Homepage      string          `json:"homepage"`
	Documentation []Documentation `json:"documentation,omitempty"`
	Publication   []Publication   `json:"publication,omitempty"`
}

// Payload is the top-level upload document: a version tag plus the list of
// entries that passed the inclusion thresholds.
type Payload struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`
}

// Validate reports which entries are missing a required field (name,
// description, or homepage), returning their indices and a message.
func (p Payload) Validate() []string {
	var errs []string
	for i, e := range p.Entries {
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, fmt.Sprintf("entries[%d]: missing name", i))
		}
		if strings.TrimSpace(e.Description) == "" {
			errs = append(errs, fmt.Sprintf("entries[%d]: missing description", i))
		}
		if strings.TrimSpace(e.Homepage) == "" {
			errs = append(errs, fmt.Sprintf("entries[%d]: missing homepage", i))
		}
	}
	return errs
}

// BuildPayload turns included decisions into a registry Payload.
func BuildPayload(version string, decisions []candidate.Decision) Payload {
	var entries []Entry
	for _, d := range decisions {
		if !d.Include {
			continue
		}
		entries = append(entries, toEntry(d))
	}
	return Payload{Version: version, Entries: entries}
}

func toEntry(d candidate.Decision) Entry {
	name := d.Score.ToolName
	if name == "" {
		name = d.Candidate.Title
	}
	desc := d.Score.ConciseDescription
	if desc == "" {
		desc = d.Candidate.Description
	}
	homepage := d.Homepage
	if homepage == "" {
		homepage = d.Candidate.Homepage
	}

	var docs []Documentation
	for _, doc := range d.Candidate.Documentation {
		docs = append(docs, Documentation{URL: doc.URL, Type: []string{"User manual"}})
	}

	var pubs []Publication
	for _, id := range d.Score.PublicationIDs {
		switch id.Kind {
		case "doi":
			pubs = append(pubs, Publication{DOI: id.Value})
		case "pmid":
			pubs = append(pubs, Publication{PMID: id.Value})
		case "pmcid":
			pubs = append(pubs, Publication{PMCID: id.Value})
		}
	}

	return Entry{
		Name:          name,
		Description:   desc,
		Homepage:      homepage,
		Documentation: docs,
		Publication:   pubs,
	}
}

// WriteJSON writes v to path as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteJSONL writes one JSON object per line to path.
func WriteJSONL(path string, decisions []candidate.Decision) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, d := range decisions {
		var pubIDs []string
		for _, id := range d.Score.PublicationIDs {
			pubIDs = append(pubIDs, id.String())
		}
		record := map[string]any{
			"id":                  d.Candidate.ID,
			"title":               d.Candidate.Title,
			"tool_name":           d.Score.ToolName,
			"homepage":            d.Homepage,
			"publication_ids":     pubIDs,
			"bio_score":           d.Score.BioScore,
			"documentation_score": d.Score.DocumentationScore,
			"confidence_score":    d.Score.ConfidenceScore,
			"include":             d.Include,
			"model":               d.Score.Model,
			"rationale":           d.Score.Rationale,
			"model_params":        d.Score.ModelParams,
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	return nil
}
