package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/prompt"
)

// csvColumns is the fixed column order for the run report, including every
// A- and B-subscore individually so a reviewer can see the full breakdown
// without opening the JSONL report.
var csvColumns = buildCSVColumns()

func buildCSVColumns() []string {
	cols := []string{
		"id", "title", "tool_name", "homepage", "publication_ids", "include",
		"bio_score", "documentation_score",
	}
	cols = append(cols, prompt.BioKeys[:]...)
	cols = append(cols, prompt.DocKeys[:]...)
	cols = append(cols, "confidence_score", "concise_description", "rationale", "model", "schema_retries", "origin_types")
	return cols
}

// WriteCSV renders the run's decisions as a fixed-column CSV report.
func WriteCSV(path string, decisions []candidate.Decision) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		return err
	}
	for _, d := range decisions {
		row := buildRow(d)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func buildRow(d candidate.Decision) []string {
	var ids []string
	for _, id := range d.Score.PublicationIDs {
		ids = append(ids, id.String())
	}

	row := []string{
		d.Candidate.ID,
		d.Candidate.Title,
		d.Score.ToolName,
		d.Homepage,
		strings.Join(ids, ";"),
		strconv.FormatBool(d.Include),
		formatFloat(d.Score.BioScore),
		formatFloat(d.Score.DocumentationScore),
	}
	for _, k := range prompt.BioKeys {
		row = append(row, formatFloat(d.Score.BioSubscores[k]))
	}
	for _, k := range prompt.DocKeys {
		row = append(row, formatFloat(d.Score.DocumentationSubscores[k]))
	}
	row = append(row,
		formatFloat(d.Score.ConfidenceScore),
		d.Score.ConciseDescription,
		d.Score.Rationale,
		d.Score.Model,
		strconv.Itoa(d.Score.SchemaRetries),
		formatOriginTypes(d.Score.OriginTypes),
	)
	return row
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// formatOriginTypes renders a field->origin map as "field:origin" pairs
// joined by ";", sorted by field name for a stable column value.
func formatOriginTypes(origins map[string]string) string {
	keys := make([]string, 0, len(origins))
	for k := range origins {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+origins[k])
	}
	return strings.Join(parts, ";")
}
