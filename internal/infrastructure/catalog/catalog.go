// Package catalog is an offline documentation and pricing lookup used when no
// documentation server is configured.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
)

const (
	docsBaseURL   = "https://docs.aws.amazon.com"
	defaultRegion = "us-east-1"
)

var serviceCodes = []string{
	"AmazonBedrock",
	"AWSLambda",
	"AmazonS3",
	"AmazonEC2",
	"AmazonRDS",
	"AmazonEKS",
	"AmazonDynamoDB",
	"AmazonSageMaker",
}

var recommendedPages = []domain.DocReference{
	{Title: "Best Practices", URL: "best-practices.html", Context: "Learn best practices for using this service"},
	{Title: "Security", URL: "security.html", Context: "Security guidelines and recommendations"},
	{Title: "Monitoring", URL: "monitoring.html", Context: "How to monitor your resources"},
}

var defaultDimensions = []string{"location", "usagetype"}

var pricingDimensions = map[string][]string{
	"AmazonEC2":     {"location", "instanceType", "operatingSystem", "tenancy"},
	"AWSLambda":     {"location", "group", "usagetype"},
	"AmazonS3":      {"location", "storageClass", "volumeType"},
	"AmazonBedrock": {"location", "model", "inferenceType"},
	"AmazonRDS":     {"location", "databaseEngine", "instanceType", "deploymentOption"},
}

const pageTemplate = `
# %s

%s is a managed AWS service. This page is generated from the offline catalog.

## Key Features
- High performance and scalability
- Fully managed service
- Integration with other AWS services

## Use Cases
- Real-time data processing
- Machine learning applications
- Content delivery

## Getting Started
1. Sign in to the AWS Console
2. Navigate to the service
3. Create a new resource
4. Configure your settings
5. Deploy and test
`

// Catalog answers documentation and pricing lookups from built-in data.
type Catalog struct {
	region string
}

var (
	_ ports.DocumentationLookup = (*Catalog)(nil)
	_ ports.PricingLookup       = (*Catalog)(nil)
)

// New returns a catalog quoting prices for region (us-east-1 when empty).
func New(region string) *Catalog {
	if region == "" {
		region = defaultRegion
	}
	return &Catalog{region: region}
}

// Search returns the overview, getting-started and pricing pages for subject.
func (c *Catalog) Search(ctx context.Context, subject string, limit int) ([]domain.DocReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subject = domain.CollapseSpaces(subject)
	if subject == "" {
		return nil, fmt.Errorf("search documentation: empty subject")
	}

	base := fmt.Sprintf("%s/%s/latest/userguide", docsBaseURL, domain.Slug(subject, '-'))
	refs := []domain.DocReference{
		{
			Title:   fmt.Sprintf("%s - What Is %s?", subject, subject),
			URL:     base + "/what-is.html",
			Context: fmt.Sprintf("Learn about %s and its key features.", subject),
		},
		{
			Title:   fmt.Sprintf("%s - Getting Started", subject),
			URL:     base + "/getting-started.html",
			Context: fmt.Sprintf("Get started with %s in minutes.", subject),
		},
		{
			Title:   fmt.Sprintf("%s - Pricing", subject),
			URL:     base + "/pricing.html",
			Context: fmt.Sprintf("Understand pricing for %s.", subject),
		},
	}
	if limit > 0 && limit < len(refs) {
		refs = refs[:limit]
	}
	return refs, nil
}

// Read renders the markdown body for a catalog documentation URL.
func (c *Catalog) Read(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse documentation url: %w", err)
	}
	segment := strings.Trim(u.Path, "/")
	if i := strings.Index(segment, "/"); i >= 0 {
		segment = segment[:i]
	}
	if segment == "" {
		return "", fmt.Errorf("read documentation %s: unknown page", rawURL)
	}
	title := titleFromSlug(segment)
	return fmt.Sprintf(pageTemplate, title, title), nil
}

// Recommend returns the best-practices, security and monitoring pages that sit
// next to a catalog documentation URL.
func (c *Catalog) Recommend(ctx context.Context, rawURL string) ([]domain.DocReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("recommend documentation for %q: not an absolute url", rawURL)
	}
	dir := u.Path
	if strings.HasSuffix(dir, ".html") {
		dir = path.Dir(dir)
	}
	u.Path = strings.TrimSuffix(dir, "/")

	refs := make([]domain.DocReference, 0, len(recommendedPages))
	for _, page := range recommendedPages {
		ref := page
		ref.URL = u.String() + "/" + page.URL
		refs = append(refs, ref)
	}
	return refs, nil
}

// ServiceCodes lists the known pricing service codes containing filter, case-insensitively.
func (c *Catalog) ServiceCodes(filter string) []string {
	filter = strings.ToLower(filter)
	var out []string
	for _, code := range serviceCodes {
		if strings.Contains(strings.ToLower(code), filter) {
			out = append(out, code)
		}
	}
	return out
}

// FindServiceCode maps a human-readable service name to a pricing service code.
func (c *Catalog) FindServiceCode(subject string) (string, bool) {
	clean := domain.ServiceCodeHint(subject)
	if clean == "" {
		return "", false
	}
	codes := c.ServiceCodes(clean)
	if len(codes) == 0 {
		return "", false
	}
	return codes[0], true
}

// Pricing returns Known pricing for subjects with a service code and the
// Unavailable variant otherwise.
func (c *Catalog) Pricing(ctx context.Context, subject string) (domain.Pricing, error) {
	if err := ctx.Err(); err != nil {
		return domain.Pricing{}, err
	}
	code, ok := c.FindServiceCode(subject)
	if !ok {
		return domain.UnavailablePricing(fmt.Sprintf("no pricing service code for %s", subject)), nil
	}
	pricing := domain.KnownPricing(
		code,
		"Pay-as-you-go",
		"Available for first 12 months",
		"$10-$1000+ depending on usage",
		[]domain.PriceDimension{
			{Name: "compute", Price: "$0.10 per hour"},
			{Name: "storage", Price: "$0.023 per GB-month"},
			{Name: "data_transfer", Price: fmt.Sprintf("$0.09 per GB (first 10 TB, %s)", c.region)},
		},
	)
	pricing.Dimensions = dimensionsFor(code)
	return pricing, nil
}

func dimensionsFor(code string) []string {
	if dims, ok := pricingDimensions[code]; ok {
		return append([]string(nil), dims...)
	}
	return append([]string(nil), defaultDimensions...)
}

func titleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "aws" || strings.ContainsAny(w, "0123456789") {
			words[i] = strings.ToUpper(w)
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
