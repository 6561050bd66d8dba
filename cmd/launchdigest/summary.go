package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"LaunchDigest/internal/domain"
)

var (
	headStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func renderSummary(title string, s domain.RunSummary) string {
	if title == "" {
		title = "LaunchDigest"
	}

	lines := []string{
		fmt.Sprintf("Services processed: %d of %d", s.TotalAnnouncements, s.DiscoveredCount),
		fmt.Sprintf("Researched: %d  Degraded: %d", s.ResearchedCount, s.DegradedCount),
		fmt.Sprintf("Screenshots: %d from %d capture(s)", s.ArtifactCount, s.CaptureCount),
		fmt.Sprintf("Duration: %s", s.Duration().Round(time.Millisecond)),
	}
	if s.OutputDocumentRef != "" {
		lines = append(lines, "Document: "+s.OutputDocumentRef)
	}

	var warnings []string
	if s.UsedSampleData {
		warnings = append(warnings, "Source unavailable: sample announcements were used")
	}
	if s.Partial {
		warnings = append(warnings, "Run was cancelled: output is partial")
	}
	if n := len(s.Failures); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d failure(s), see the run report", n))
	}

	parts := []string{headStyle.Render(title + " - run complete"), bodyStyle.Render(strings.Join(lines, "\n"))}
	if len(warnings) > 0 {
		parts = append(parts, warnStyle.Render(strings.Join(warnings, "\n")))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
