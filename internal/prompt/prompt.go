// Package prompt renders the scoring rubric template for a candidate and
// tracks which of its placeholder fields actually came from the candidate's
// own data versus being left empty.
package prompt

import (
	"fmt"
	"strings"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
)

// DefaultTemplate is the scoring rubric sent to the model for every
// candidate. It is deliberately long and explicit: the model is asked to
// gate on scope and evidence before assigning any subscores, and to emit
// exactly the fields in JSONSchema.
const DefaultTemplate = `You are assessing whether a software tool belongs in the bio.tools registry.

Tool title: {title}
Description: {description}
Homepage: {homepage}
Homepage status: {homepage_status}
Homepage error: {homepage_error}
Documentation artifacts: {documentation}
Documentation keyword hints: {documentation_keywords}
Repository: {repository}
Tags: {tags}
Published: {published_at}
Publication abstract: {publication_abstract}
Publication full text: {publication_full_text}
Publication identifiers: {publication_ids}

Decision context: a candidate is added to the registry only when both its
biological-relevance score and its documentation score clear 0.5. Score each
criterion independently; do not compute any aggregate yourself.

Gating checklist, applied in order:
1. Life-science scope gate. If the tool's domain is not life science or
   biomedicine, set every A and B subscore to 0, confidence_score to at most
   0.2, and begin the rationale with "Rejected as bio.tools candidate because
   domain is non-bio".
2. Usable software deliverable gate. If there is no installable or runnable
   software artifact (only a dataset, a paper, or an abstract idea), set
   every A and B subscore to 0, confidence_score to at most 0.2, and begin
   the rationale with "Rejected as bio.tools candidate because no usable
   software deliverable".
3. Operational access and documentation gate. If the homepage status is 400
   or higher, or homepage error is non-empty, or no documentation artifacts
   are listed above, set every B subscore to 0 and cap confidence_score at
   0.3.

Bio subscores (A1-A5), each scored 1, 0.5, or 0:
A1 Biological intent: 1 if the tool's stated purpose is clearly biological
   or biomedical; 0.5 if biological relevance is implied but not explicit;
   0 otherwise.
A2 Operations on biological data: 1 if the tool explicitly processes
   sequences, structures, images, or other biological data types; 0.5 if
   this is only implied; 0 otherwise.
A3 Software with biological data I/O: 1 if documented inputs/outputs are
   biological data formats; 0.5 if partially documented; 0 otherwise.
A4 Modality classification: 1 if the tool's modality (command-line,
   web service, library, workflow) is clear and appropriate; 0.5 if
   ambiguous; 0 if absent.
A5 Evidence of bio use: 1 if a publication or documentation artifact
   demonstrates biological application; 0.5 if only suggested; 0 if none.

Documentation subscores (B1-B5), each scored 1, 0.5, or 0. A score of 1.0
requires two or more independent artifacts; 0.5 requires exactly one:
B1 Documentation completeness: manuals, READMEs, wikis, or tutorials.
B2 Installation pathways: package manager entries, containers, or explicit
   install instructions.
B3 Reproducibility aids: versioned releases, DOIs, archived snapshots.
B4 Maintenance signal: recent commits, changelog, issue tracker activity.
B5 Onboarding and support: FAQ, contributing guide, community channels.

Selection and normalization rules: an unreachable homepage forces every B
subscore to 0. A 0.5 score must cite the specific artifact that justifies
it; a 1.0 score requires citing two independent artifacts. Prefer evidence
in this priority order: publication full text, publication abstract,
homepage or documentation content, repository content, keyword hints alone.
Normalize publication identifiers to "pmcid:", "pmid:", or "doi:" prefixes.

Rationale requirements: the rationale must name the specific evidence used
for each non-zero subscore, in one or two sentences per group.

Confidence calibration: 0.9-1.0 only when every subscore is grounded in
directly cited evidence; 0.6-0.8 when most subscores are grounded but one
or two rely on inference; 0.3-0.5 when several subscores rely on keyword
hints alone or the homepage was partially unreachable; 0.0-0.2 when a
gating rule fired. Confidence must not exceed 0.5 if any documentation
subscore relies solely on keyword evidence, or if the homepage was
unreachable.

Do NOT compute aggregate scores yourself. Do not output any value outside
the range [0.0, 1.0]. Always emit every field exactly once. Emit ONLY the
fields in the schema below, and validate your draft against this schema
before responding.

{json_schema}

Output: respond ONLY with a single JSON object shaped exactly as the schema
above requires, and nothing else.`

// Fields holds the rendered values substituted into DefaultTemplate.
type Fields struct {
	Title                 string
	Description           string
	Homepage              string
	HomepageStatus         string
	HomepageError          string
	Documentation          string
	DocumentationKeywords  string
	Repository             string
	Tags                   string
	PublishedAt            string
	PublicationAbstract    string
	PublicationFullText    string
	PublicationIDs         string
}

// Builder renders prompts from a fixed template.
type Builder struct {
	Template string
}

// NewBuilder returns a Builder using DefaultTemplate.
func NewBuilder() *Builder {
	return &Builder{Template: DefaultTemplate}
}

// Build renders the prompt for c, substituting the json schema as well.
func (b *Builder) Build(c candidate.Candidate) string {
	f := FieldsFor(c)
	return render(b.Template, map[string]string{
		"title":                   orNone(f.Title),
		"description":             orNone(f.Description),
		"homepage":                orNone(f.Homepage),
		"homepage_status":         orNone(f.HomepageStatus),
		"homepage_error":          orNone(f.HomepageError),
		"documentation":           orNone(f.Documentation),
		"documentation_keywords":  orNone(f.DocumentationKeywords),
		"repository":              orNone(f.Repository),
		"tags":                    orNone(f.Tags),
		"published_at":            orNone(f.PublishedAt),
		"publication_abstract":    orNone(f.PublicationAbstract),
		"publication_full_text":   orNone(f.PublicationFullText),
		"publication_ids":         orNone(f.PublicationIDs),
		"json_schema":             JSONSchema,
	})
}

// Augment appends the previous validation failures to a base prompt so the
// model can correct its next attempt.
func Augment(basePrompt string, errs []string) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)
	sb.WriteString("\n\nThe previous response did not validate against the JSON schema because:\n")
	for _, e := range errs {
		sb.WriteString("- ")
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	sb.WriteString("Respond again with a corrected JSON object that satisfies every rule.")
	return sb.String()
}

// FieldsFor renders a candidate's raw data into template-ready strings.
func FieldsFor(c candidate.Candidate) Fields {
	var docs []string
	for _, d := range c.Documentation {
		docs = append(docs, d.URL)
	}
	status := ""
	if c.Homepage_.StatusCode != 0 {
		status = fmt.Sprintf("%d", c.Homepage_.StatusCode)
	}
	published := ""
	if !c.PublishedAt.IsZero() {
		published = c.PublishedAt.Format("2006-01-02")
	}

	var ids []string
	for _, id := range c.PublicationIDs {
		ids = append(ids, strings.ToLower(id.Kind)+":"+id.Value)
	}

	return Fields{
		Title:                 c.Title,
		Description:           c.Description,
		Homepage:              c.Homepage,
		HomepageStatus:        status,
		HomepageError:         c.Homepage_.Error,
		Documentation:         strings.Join(docs, ", "),
		DocumentationKeywords: strings.Join(c.Keywords, ", "),
		Repository:            c.Repository,
		Tags:                  strings.Join(c.Tags, ", "),
		PublishedAt:           published,
		PublicationAbstract:   c.PublicationAbstract,
		PublicationFullText:   fullTextOrURL(c),
		PublicationIDs:        strings.Join(ids, ", "),
	}
}

func fullTextOrURL(c candidate.Candidate) string {
	if c.PublicationFullText != "" {
		return c.PublicationFullText
	}
	return c.PublicationFullTextURL
}

// OriginTypes reports, for each prompt field, whether its value came from
// the candidate's own data ("candidate") or was absent ("missing").
func OriginTypes(c candidate.Candidate) map[string]string {
	f := FieldsFor(c)
	origin := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return "missing"
		}
		return "candidate"
	}
	return map[string]string{
		"title":                  origin(f.Title),
		"description":            origin(f.Description),
		"homepage":               origin(f.Homepage),
		"documentation":          origin(f.Documentation),
		"repository":             origin(f.Repository),
		"tags":                   origin(f.Tags),
		"published_at":           origin(f.PublishedAt),
		"publication_abstract":   origin(f.PublicationAbstract),
		"publication_full_text":  origin(f.PublicationFullText),
		"publication_ids":        origin(f.PublicationIDs),
	}
}

func orNone(v string) string {
	if strings.TrimSpace(v) == "" {
		return "None"
	}
	return v
}

// render performs literal "{key}" substitution without treating the
// template as a format string, so stray braces in candidate data never
// trigger a parse error.
func render(template string, fields map[string]string) string {
	out := template
	for k, v := range fields {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}
