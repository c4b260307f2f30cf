package report

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
)

// WritePDFSummary renders a one-page run summary: the model name, the
// number of candidates scored and included, and each included tool with its
// bio and documentation scores; thresholds and rejected candidates are not
// listed. It uses the same line-by-line Markdown-flavored
// layout style as the research-report appendix this pipeline's teacher
// produces, minus the link-rewriting this report has no use for.
func WritePDFSummary(path string, decisions []candidate.Decision, model string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	heading := func(text string, size float64) {
		pdf.SetFont("Helvetica", "B", size)
		pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	included := 0
	for _, d := range decisions {
		if d.Include {
			included++
		}
	}

	heading("bio.tools enrichment run summary", 14)
	pdf.MultiCell(0, 5, fmt.Sprintf("Model: %s", model), "", "L", false)
	pdf.MultiCell(0, 5, fmt.Sprintf("Candidates scored: %d", len(decisions)), "", "L", false)
	pdf.MultiCell(0, 5, fmt.Sprintf("Included: %d", included), "", "L", false)
	pdf.Ln(5)

	heading("Included tools", 12)
	for _, d := range decisions {
		if !d.Include {
			continue
		}
		name := d.Score.ToolName
		if name == "" {
			name = d.Candidate.Title
		}
		line := fmt.Sprintf("%s (bio=%.2f, doc=%.2f)", name, d.Score.BioScore, d.Score.DocumentationScore)
		pdf.MultiCell(0, 5, strings.TrimSpace(line), "", "L", false)
	}

	return pdf.OutputFileAndClose(path)
}
