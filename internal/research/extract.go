package research

import (
	"fmt"
	"strings"
)

const maxListItems = 5

var (
	defaultFeatures = []string{
		"Fully managed service",
		"High availability and durability",
		"Integration with AWS services",
		"Pay-as-you-go pricing",
		"Enterprise-grade security",
	}
	defaultUseCases = []string{
		"Real-time data processing",
		"Machine learning applications",
		"Web and mobile backends",
		"IoT applications",
		"Analytics and reporting",
	}
	defaultProblems = []string{
		"Reduces operational complexity",
		"Improves scalability and performance",
		"Enhances security and compliance",
		"Accelerates development cycles",
	}
)

// extractOverview returns the first prose line following a heading.
func extractOverview(subject, content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !isHeading(line) {
			continue
		}
		for j := i + 1; j < len(lines) && j < i+5; j++ {
			text := strings.TrimSpace(lines[j])
			if text == "" || isHeading(text) || isBullet(text) {
				continue
			}
			return text
		}
	}
	return fmt.Sprintf("%s is an AWS service that provides cloud capabilities.", subject)
}

// extractSection collects up to five bullets under the first heading containing one of the keywords.
func extractSection(content string, keywords ...string) []string {
	var (
		items     []string
		inSection bool
	)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case isHeading(trimmed):
			if inSection {
				return items
			}
			lower := strings.ToLower(trimmed)
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					inSection = true
					break
				}
			}
		case inSection && isBullet(trimmed):
			items = append(items, strings.TrimSpace(trimmed[1:]))
			if len(items) >= maxListItems {
				return items
			}
		}
	}
	return items
}

func extractFeatures(content string) []string {
	return orDefault(extractSection(content, "feature", "key"), defaultFeatures)
}

func extractUseCases(content string) []string {
	return orDefault(extractSection(content, "use case"), defaultUseCases)
}

func extractProblems(content string) []string {
	return orDefault(extractSection(content, "problem", "challenge"), defaultProblems)
}

func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*")
}

func orDefault(values, fallback []string) []string {
	if len(values) > 0 {
		return values
	}
	return append([]string(nil), fallback...)
}
