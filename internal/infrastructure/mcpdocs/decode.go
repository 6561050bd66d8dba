package mcpdocs

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"LaunchDigest/internal/domain"
)

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Context string `json:"context"`
}

// decodeReferences accepts a bare JSON array or an object wrapping it under
// "results" or "result".
func decodeReferences(text string) ([]domain.DocReference, error) {
	var items []searchResult
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		var wrapped struct {
			Results []searchResult `json:"results"`
			Result  []searchResult `json:"result"`
		}
		if err2 := json.Unmarshal([]byte(text), &wrapped); err2 != nil {
			return nil, err
		}
		items = append(wrapped.Results, wrapped.Result...)
	}

	refs := make([]domain.DocReference, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.URL) == "" {
			continue
		}
		refs = append(refs, domain.DocReference{Title: it.Title, URL: it.URL, Context: it.Context})
	}
	return refs, nil
}

func decodeCodes(text string) ([]string, error) {
	var codes []string
	if err := json.Unmarshal([]byte(text), &codes); err == nil {
		return codes, nil
	}
	var wrapped struct {
		ServiceCodes []string `json:"service_codes"`
		Result       []string `json:"result"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
		return nil, err
	}
	codes = append(wrapped.ServiceCodes, wrapped.Result...)
	if len(codes) == 0 {
		return nil, errors.New("empty service code list")
	}
	return codes, nil
}

// decodeAttributes accepts a bare array of attribute names or an object
// wrapping it under "attributes" or "result".
func decodeAttributes(text string) ([]string, error) {
	var attrs []string
	if err := json.Unmarshal([]byte(text), &attrs); err != nil {
		var wrapped struct {
			Attributes []string `json:"attributes"`
			Result     []string `json:"result"`
		}
		if err2 := json.Unmarshal([]byte(text), &wrapped); err2 != nil {
			return nil, err
		}
		attrs = append(wrapped.Attributes, wrapped.Result...)
	}
	out := attrs[:0]
	for _, a := range attrs {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out, nil
}

// unwrapContent returns markdown from a read result, which is either raw text
// or a JSON object with a "content" or "result" string.
func unwrapContent(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return text
	}
	var wrapped struct {
		Content string `json:"content"`
		Result  string `json:"result"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
		return text
	}
	if wrapped.Content != "" {
		return wrapped.Content
	}
	if wrapped.Result != "" {
		return wrapped.Result
	}
	return text
}

type pricingPayload struct {
	ServiceCode   string            `json:"service_code"`
	Model         string            `json:"pricing_model"`
	FreeTier      string            `json:"free_tier"`
	EstimatedCost string            `json:"estimated_monthly_cost"`
	Details       map[string]string `json:"pricing_details"`
}

func (p pricingPayload) toPricing(code string) domain.Pricing {
	if p.ServiceCode != "" {
		code = p.ServiceCode
	}
	model := p.Model
	if model == "" {
		model = "On-demand"
	}

	names := make([]string, 0, len(p.Details))
	for name := range p.Details {
		names = append(names, name)
	}
	sort.Strings(names)
	details := make([]domain.PriceDimension, 0, len(names))
	for _, name := range names {
		details = append(details, domain.PriceDimension{Name: name, Price: p.Details[name]})
	}

	return domain.KnownPricing(code, model, p.FreeTier, p.EstimatedCost, details)
}
