package research

import (
	"fmt"

	"LaunchDigest/internal/domain"
)

func usageExamples(subject string) []domain.UsageExample {
	return []domain.UsageExample{
		{
			Title:       "Basic Setup",
			Description: fmt.Sprintf("Getting started with %s", subject),
			Steps: []string{
				"Sign in to AWS Console",
				fmt.Sprintf("Navigate to %s", subject),
				"Create new resource",
				"Configure settings",
				"Deploy and test",
			},
		},
		{
			Title:       "Production Deployment",
			Description: fmt.Sprintf("Deploy %s in production", subject),
			Steps: []string{
				"Set up VPC and networking",
				"Configure security groups",
				"Deploy resources with IaC",
				"Set up monitoring and alerts",
				"Implement backup strategy",
			},
		},
	}
}
