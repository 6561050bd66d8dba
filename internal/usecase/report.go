package usecase

import (
	"fmt"
	"strings"
	"time"

	"LaunchDigest/internal/domain"
)

const reportRule = "================================================================================"

// BuildReport renders the plain-text run report: counts, failures, skipped
// items, one status line per processed item and the document content summary.
func BuildReport(title string, s domain.RunSummary, content string) string {
	var b strings.Builder

	b.WriteString(reportRule + "\n")
	if title == "" {
		title = "LaunchDigest"
	}
	fmt.Fprintf(&b, "%s - Run Report\n", title)
	fmt.Fprintf(&b, "Generated on: %s\n", s.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	b.WriteString(reportRule + "\n\n")

	fmt.Fprintf(&b, "Run ID: %s\n", s.RunID)
	source := s.SourceURL
	if s.UsedSampleData {
		source += " (unavailable, sample data used)"
	}
	fmt.Fprintf(&b, "Source: %s\n", source)
	fmt.Fprintf(&b, "Duration: %s\n", s.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "Announcements discovered: %d\n", s.DiscoveredCount)
	fmt.Fprintf(&b, "Announcements processed: %d\n", s.TotalAnnouncements)
	fmt.Fprintf(&b, "Researched: %d, degraded: %d\n", s.ResearchedCount, s.DegradedCount)
	fmt.Fprintf(&b, "Capture attempts: %d, artifacts: %d\n", s.CaptureCount, s.ArtifactCount)
	if s.Partial {
		b.WriteString("Run status: PARTIAL (cancelled before every item was processed)\n")
	} else {
		b.WriteString("Run status: complete\n")
	}
	if s.OutputDocumentRef != "" {
		fmt.Fprintf(&b, "Document: %s\n", s.OutputDocumentRef)
	}

	fmt.Fprintf(&b, "\nFailures (%d):\n", len(s.Failures))
	if len(s.Failures) == 0 {
		b.WriteString("  none\n")
	}
	for _, f := range s.Failures {
		if f.ServiceName != "" {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", f.Stage, f.ServiceName, f.Cause)
			continue
		}
		fmt.Fprintf(&b, "  [%s] %s\n", f.Stage, f.Cause)
	}

	if len(s.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped (%d):\n", len(s.Skipped))
		for _, sk := range s.Skipped {
			fmt.Fprintf(&b, "  %s: %s\n", sk.ServiceName, sk.Reason)
		}
	}

	b.WriteString("\nItems:\n")
	for _, item := range s.Items {
		capture := "not attempted"
		if item.CaptureAttempted {
			capture = fmt.Sprintf("%d artifact(s)", item.Artifacts)
		}
		fmt.Fprintf(&b, "  %2d. %-40s research=%-8s capture=%s\n", item.Index+1, item.ServiceName, item.Research, capture)
	}

	if content = strings.TrimSpace(content); content != "" {
		b.WriteString("\n" + content + "\n")
	}
	return b.String()
}

// Digest is the short notification text published after a run.
func Digest(s domain.RunSummary) string {
	var b strings.Builder

	status := "finished"
	if s.Partial {
		status = "finished partially"
	}
	fmt.Fprintf(&b, "LaunchDigest run %s\n", status)
	if s.UsedSampleData {
		b.WriteString("Source unavailable, sample announcements used\n")
	}
	fmt.Fprintf(&b, "Processed %d of %d announcements (%d degraded)\n", s.TotalAnnouncements, s.DiscoveredCount, s.DegradedCount)
	fmt.Fprintf(&b, "Screenshots: %d\n", s.ArtifactCount)

	if len(s.Items) > 0 {
		b.WriteString("\nServices:\n")
		for _, item := range s.Items {
			mark := "+"
			if item.Research == domain.ResearchDegraded {
				mark = "-"
			}
			fmt.Fprintf(&b, "%s %s\n", mark, item.ServiceName)
		}
	}
	if s.OutputDocumentRef != "" {
		fmt.Fprintf(&b, "\nDocument: %s\n", s.OutputDocumentRef)
	}
	return b.String()
}
