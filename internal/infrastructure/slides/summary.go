package slides

import (
	"fmt"
	"strings"

	"LaunchDigest/internal/domain"
)

// contentSummary is the per-service part of the human-readable run report.
func contentSummary(records []domain.EnrichedRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Services Researched: %d\n", len(records))

	for i, rec := range records {
		res := rec.Research
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, rec.Announcement.ServiceName)
		b.WriteString(strings.Repeat("-", 80) + "\n")
		fmt.Fprintf(&b, "Overview: %s\n", orNA(res.Overview))
		if res.Degraded() {
			fmt.Fprintf(&b, "Research: %s (%s)\n", notAvailable, res.Reason)
		}

		writeList(&b, "Problems Solved", res.ProblemsSolved)
		writeList(&b, "Benefits", res.Benefits)

		if res.Pricing.Available() {
			fmt.Fprintf(&b, "\nPricing: %s\n", orNA(res.Pricing.Model))
			fmt.Fprintf(&b, "Free Tier: %s\n", orNA(res.Pricing.FreeTier))
		} else {
			fmt.Fprintf(&b, "\nPricing: %s (%s)\n", notAvailable, orNA(res.Pricing.Reason))
		}
		if len(res.DocumentationURLs) > 0 {
			fmt.Fprintf(&b, "\nDocumentation: %s\n", res.DocumentationURLs[0])
		}
		if n := len(rec.Artifacts); n > 0 {
			fmt.Fprintf(&b, "\nScreenshots: %d captured\n", n)
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "  • %s\n", it)
	}
}
