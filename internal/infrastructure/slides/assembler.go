// Package slides renders enriched records as a Markdown (Marp) slide deck.
package slides

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
)

const (
	mediaType       = "text/markdown"
	maxExamples     = 2
	maxExampleSteps = 5
	notAvailable    = "not available"
)

var deckTemplate = template.Must(template.New("deck").Parse(`---
marp: true
paginate: true
---

# {{ .Title }}

{{ .Subtitle }}
{{- range .Sections }}
{{- range .Slides }}

---

## {{ .Title }}

{{ .Body }}
{{- end }}
{{- end }}
`))

// Assembler implements ports.Assembler.
type Assembler struct {
	screenshotDir string
	now           func() time.Time
}

var _ ports.Assembler = (*Assembler)(nil)

// NewAssembler returns an assembler whose image links point into screenshotDir,
// relative to the presentation file.
func NewAssembler(screenshotDir string) *Assembler {
	if screenshotDir == "" {
		screenshotDir = "../screenshots"
	}
	return &Assembler{
		screenshotDir: strings.TrimSuffix(screenshotDir, "/"),
		now:           time.Now,
	}
}

type deck struct {
	Title    string
	Subtitle string
	Sections []domain.Section
}

// Assemble renders one section per record, in input order, after a table of contents.
func (a *Assembler) Assemble(ctx context.Context, records []domain.EnrichedRecord, meta domain.DocumentMeta) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, fmt.Errorf("assemble document: %w", err)
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = "New Services and Features"
	}

	sections := make([]domain.Section, 0, len(records)+1)
	sections = append(sections, tocSection(records))
	for _, rec := range records {
		sections = append(sections, a.recordSection(rec))
	}

	var buf bytes.Buffer
	err := deckTemplate.Execute(&buf, deck{
		Title:    title,
		Subtitle: a.subtitle(meta),
		Sections: sections,
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("render deck: %w", err)
	}

	return domain.Document{
		Title:     title,
		FileName:  domain.Slug(title, '_') + ".md",
		MediaType: mediaType,
		Sections:  sections[1:],
		Content:   buf.Bytes(),
		Summary:   contentSummary(records),
	}, nil
}

func (a *Assembler) subtitle(meta domain.DocumentMeta) string {
	subtitle := strings.TrimSpace(meta.Subtitle)
	if subtitle == "" {
		subtitle = "New Services and Features"
	}
	lines := []string{subtitle, "", "Generated on " + a.now().Format("January 02, 2006")}
	if meta.UsedSampleData {
		lines = append(lines, "", "> Built from sample data: the announcement source was unavailable.")
	}
	if meta.Partial {
		lines = append(lines, "", "> Partial run: some services were not processed.")
	}
	return strings.Join(lines, "\n")
}

func tocSection(records []domain.EnrichedRecord) domain.Section {
	items := make([]string, 0, len(records))
	for i, rec := range records {
		items = append(items, fmt.Sprintf("%d. %s", i+1, rec.Announcement.ServiceName))
	}
	body := strings.Join(items, "\n")
	if body == "" {
		body = "No services were discovered in this run."
	}
	return domain.Section{Slides: []domain.Slide{{Title: "Services Covered", Body: body}}}
}

func (a *Assembler) recordSection(rec domain.EnrichedRecord) domain.Section {
	name := rec.Announcement.ServiceName
	res := rec.Research

	slides := []domain.Slide{
		{Title: name, Body: overviewBody(rec)},
		{Title: name + " - Problems & Benefits", Body: problemsBody(res)},
		{Title: name + " - Pricing", Body: pricingBody(res.Pricing)},
		{Title: name + " - Usage Examples", Body: examplesBody(res.Examples)},
	}
	for _, art := range rec.Artifacts {
		slides = append(slides, domain.Slide{
			Title: fmt.Sprintf("%s - %s", name, titleCase(art.Label)),
			Body:  fmt.Sprintf("![%s](%s/%s)", art.Label, a.screenshotDir, art.FileName()),
		})
	}

	return domain.Section{
		AnnouncementID: rec.Announcement.ID,
		ServiceName:    name,
		Slides:         slides,
	}
}

func overviewBody(rec domain.EnrichedRecord) string {
	var b strings.Builder
	b.WriteString("**Overview**\n\n")
	overview := strings.TrimSpace(rec.Research.Overview)
	if overview == "" {
		overview = rec.Announcement.RawTitle
	}
	b.WriteString(overview)
	if rec.Research.Degraded() {
		fmt.Fprintf(&b, "\n\n_Research: %s (%s)_", notAvailable, rec.Research.Reason)
	}
	if len(rec.Research.DocumentationURLs) > 0 {
		fmt.Fprintf(&b, "\n\nDocumentation: %s", rec.Research.DocumentationURLs[0])
	}
	if len(rec.Research.RecommendedTopics) > 0 {
		fmt.Fprintf(&b, "\n\nRecommended reading: %s", strings.Join(rec.Research.RecommendedTopics, ", "))
	}
	return b.String()
}

func problemsBody(res domain.ResearchResult) string {
	return "**Problems Solved**\n\n" + bullets(res.ProblemsSolved) +
		"\n\n**Benefits**\n\n" + bullets(res.Benefits)
}

func pricingBody(p domain.Pricing) string {
	if !p.Available() {
		return fmt.Sprintf("Pricing: %s (%s)", notAvailable, orNA(p.Reason))
	}
	lines := []string{
		"- Pricing Model: " + orNA(p.Model),
		"- Free Tier: " + orNA(p.FreeTier),
		"- Estimated Cost: " + orNA(p.EstimatedCost),
	}
	for _, d := range p.Details {
		lines = append(lines, fmt.Sprintf("  - %s: %s", d.Name, d.Price))
	}
	if len(p.Dimensions) > 0 {
		lines = append(lines, "- Pricing Dimensions: "+strings.Join(p.Dimensions, ", "))
	}
	return strings.Join(lines, "\n")
}

func examplesBody(examples []domain.UsageExample) string {
	if len(examples) == 0 {
		return "Usage examples: " + notAvailable
	}
	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}
	parts := make([]string, 0, len(examples))
	for _, ex := range examples {
		steps := ex.Steps
		if len(steps) > maxExampleSteps {
			steps = steps[:maxExampleSteps]
		}
		var b strings.Builder
		fmt.Fprintf(&b, "**%s**", ex.Title)
		for i, s := range steps {
			fmt.Fprintf(&b, "\n%d. %s", i+1, s)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

func bullets(items []string) string {
	if len(items) == 0 {
		return "- " + notAvailable
	}
	return "- " + strings.Join(items, "\n- ")
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}

func titleCase(label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
