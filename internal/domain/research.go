package domain

import (
	"strings"
	"time"
)

// ResearchStatus tells whether research data came from a successful lookup.
type ResearchStatus string

const (
	ResearchOK       ResearchStatus = "ok"
	ResearchDegraded ResearchStatus = "degraded"
)

// PricingKind tags the Pricing variant.
type PricingKind string

const (
	PricingKnown       PricingKind = "known"
	PricingUnavailable PricingKind = "unavailable"
)

// PriceDimension is one billable dimension, e.g. "storage" -> "$0.023 per GB-month".
type PriceDimension struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Pricing is either Known pricing details or an Unavailable marker with a reason.
// Unavailable is a valid terminal state, not an error.
type Pricing struct {
	Kind          PricingKind      `json:"kind"`
	ServiceCode   string           `json:"service_code,omitempty"`
	Model         string           `json:"model,omitempty"`
	FreeTier      string           `json:"free_tier,omitempty"`
	EstimatedCost string           `json:"estimated_cost,omitempty"`
	Details       []PriceDimension `json:"details,omitempty"`
	// Dimensions are the attribute names the price list is filtered by
	// (location, instanceType, ...).
	Dimensions []string `json:"dimensions,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// KnownPricing builds the Known pricing variant.
func KnownPricing(serviceCode, model, freeTier, estimated string, details []PriceDimension) Pricing {
	return Pricing{
		Kind:          PricingKnown,
		ServiceCode:   serviceCode,
		Model:         model,
		FreeTier:      freeTier,
		EstimatedCost: estimated,
		Details:       details,
	}
}

// UnavailablePricing builds the Unavailable pricing variant.
func UnavailablePricing(reason string) Pricing {
	if reason == "" {
		reason = "pricing information not available"
	}
	return Pricing{Kind: PricingUnavailable, Reason: reason}
}

// Available reports whether pricing details are known.
func (p Pricing) Available() bool {
	return p.Kind == PricingKnown
}

// ServiceCodeHint strips vendor prefixes and spaces from a service name so it can
// be matched against pricing service codes: "Amazon S3" -> "S3".
func ServiceCodeHint(subject string) string {
	clean := CollapseSpaces(subject)
	clean = strings.ReplaceAll(clean, "Amazon ", "")
	clean = strings.ReplaceAll(clean, "AWS ", "")
	return strings.ReplaceAll(clean, " ", "")
}

// UsageExample is a short walkthrough of how the service is used.
type UsageExample struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// DocReference points at one documentation page returned by a search.
type DocReference struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Context string `json:"context,omitempty"`
}

// Highlights is the narrative part of research produced by a summarizer.
type Highlights struct {
	Overview       string   `json:"overview"`
	ProblemsSolved []string `json:"problems_solved"`
	Benefits       []string `json:"benefits"`
}

// ServiceDetail is what the research collaborators know about one subject.
// It is shared by every announcement with the same normalized service name.
type ServiceDetail struct {
	ServiceName       string         `json:"service_name"`
	Overview          string         `json:"overview"`
	ProblemsSolved    []string       `json:"problems_solved"`
	Benefits          []string       `json:"benefits"`
	UseCases          []string       `json:"use_cases"`
	Pricing           Pricing        `json:"pricing"`
	Examples          []UsageExample `json:"examples"`
	DocumentationURLs []string       `json:"documentation_urls"`
	RecommendedTopics []string       `json:"recommended_topics"`
	FetchedAt         time.Time      `json:"fetched_at"`
}

// ResearchResult is the researched detail for exactly one announcement.
type ResearchResult struct {
	AnnouncementID    string         `json:"announcement_id"`
	ServiceName       string         `json:"service_name"`
	Status            ResearchStatus `json:"status"`
	Overview          string         `json:"overview"`
	ProblemsSolved    []string       `json:"problems_solved"`
	Benefits          []string       `json:"benefits"`
	UseCases          []string       `json:"use_cases,omitempty"`
	Pricing           Pricing        `json:"pricing"`
	Examples          []UsageExample `json:"examples"`
	DocumentationURLs []string       `json:"documentation_urls,omitempty"`
	RecommendedTopics []string       `json:"recommended_topics,omitempty"`
	Reason            string         `json:"reason,omitempty"`
	FetchedAt         time.Time      `json:"fetched_at"`
}

// ResultFor stamps the shared subject detail onto one announcement.
// Slices are copied so results never alias each other.
func (d ServiceDetail) ResultFor(ann Announcement) ResearchResult {
	return ResearchResult{
		AnnouncementID:    ann.ID,
		ServiceName:       ann.ServiceName,
		Status:            ResearchOK,
		Overview:          d.Overview,
		ProblemsSolved:    cloneStrings(d.ProblemsSolved),
		Benefits:          cloneStrings(d.Benefits),
		UseCases:          cloneStrings(d.UseCases),
		Pricing:           clonePricing(d.Pricing),
		Examples:          cloneExamples(d.Examples),
		DocumentationURLs: cloneStrings(d.DocumentationURLs),
		RecommendedTopics: cloneStrings(d.RecommendedTopics),
		FetchedAt:         d.FetchedAt,
	}
}

// UnavailableResearch is the explicit degraded research value for an announcement.
func UnavailableResearch(ann Announcement, reason string, at time.Time) ResearchResult {
	return ResearchResult{
		AnnouncementID: ann.ID,
		ServiceName:    ann.ServiceName,
		Status:         ResearchDegraded,
		Overview:       ann.RawSummary,
		Pricing:        UnavailablePricing(reason),
		Reason:         reason,
		FetchedAt:      at,
	}
}

// Degraded reports whether the research fell back to the unavailable marker.
func (r ResearchResult) Degraded() bool {
	return r.Status == ResearchDegraded
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func clonePricing(p Pricing) Pricing {
	if p.Details != nil {
		p.Details = append([]PriceDimension(nil), p.Details...)
	}
	p.Dimensions = cloneStrings(p.Dimensions)
	return p
}

func cloneExamples(examples []UsageExample) []UsageExample {
	if examples == nil {
		return nil
	}
	out := make([]UsageExample, len(examples))
	for i, ex := range examples {
		ex.Steps = cloneStrings(ex.Steps)
		out[i] = ex
	}
	return out
}
