// Package mcpdocs looks up service documentation and pricing through MCP tool
// servers (documentation server and pricing server).
package mcpdocs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
)

const (
	toolSearchDocumentation = "search_documentation"
	toolReadDocumentation   = "read_documentation"
	toolPricingServiceCodes = "get_pricing_service_codes"
	toolPricing             = "get_pricing"
	toolPricingAttributes   = "get_pricing_service_attributes"
	toolRecommend           = "recommend"

	defaultRegion    = "us-east-1"
	defaultMaxLength = 5000
)

// Options tune tool arguments.
type Options struct {
	Region        string
	ReadMaxLength int
	Logger        *slog.Logger
}

// Client calls documentation and pricing tools over MCP sessions.
type Client struct {
	docs    *sdkmcp.ClientSession
	pricing *sdkmcp.ClientSession

	region    string
	maxLength int
	logger    *slog.Logger

	codesMu sync.Mutex
	codes   []string
}

var (
	_ ports.DocumentationLookup = (*Client)(nil)
	_ ports.PricingLookup       = (*Client)(nil)
)

// CommandTransport launches an MCP server subprocess speaking over stdio.
func CommandTransport(argv []string) (sdkmcp.Transport, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, errors.New("mcp command is empty")
	}
	return &sdkmcp.CommandTransport{Command: exec.Command(argv[0], argv[1:]...)}, nil
}

// Connect opens sessions on both transports. A nil pricing transport leaves
// pricing unavailable; a nil docs transport is an error.
func Connect(ctx context.Context, docsTransport, pricingTransport sdkmcp.Transport, opts Options) (*Client, error) {
	if docsTransport == nil {
		return nil, errors.New("connect documentation server: no transport")
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "launchdigest", Version: "v1.0.0"}, nil)

	docs, err := client.Connect(ctx, docsTransport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect documentation server: %w", err)
	}

	var pricing *sdkmcp.ClientSession
	if pricingTransport != nil {
		pricing, err = client.Connect(ctx, pricingTransport, nil)
		if err != nil {
			_ = docs.Close()
			return nil, fmt.Errorf("connect pricing server: %w", err)
		}
	}

	region := opts.Region
	if region == "" {
		region = defaultRegion
	}
	maxLength := opts.ReadMaxLength
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		docs:      docs,
		pricing:   pricing,
		region:    region,
		maxLength: maxLength,
		logger:    logger.With("component", "mcpdocs"),
	}, nil
}

// Close ends both sessions.
func (c *Client) Close() error {
	var errs []error
	if c.docs != nil {
		errs = append(errs, c.docs.Close())
	}
	if c.pricing != nil {
		errs = append(errs, c.pricing.Close())
	}
	return errors.Join(errs...)
}

// Search calls search_documentation.
func (c *Client) Search(ctx context.Context, subject string, limit int) ([]domain.DocReference, error) {
	text, err := callText(ctx, c.docs, toolSearchDocumentation, map[string]any{
		"search_phrase": subject,
		"limit":         limit,
	})
	if err != nil {
		return nil, err
	}

	refs, err := decodeReferences(text)
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", toolSearchDocumentation, err)
	}
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	c.logger.Debug("documentation search", "subject", subject, "results", len(refs))
	return refs, nil
}

// Read calls read_documentation and returns the page markdown.
func (c *Client) Read(ctx context.Context, url string) (string, error) {
	text, err := callText(ctx, c.docs, toolReadDocumentation, map[string]any{
		"url":        url,
		"max_length": c.maxLength,
	})
	if err != nil {
		return "", err
	}
	return unwrapContent(text), nil
}

// Recommend calls recommend for pages related to url.
func (c *Client) Recommend(ctx context.Context, url string) ([]domain.DocReference, error) {
	text, err := callText(ctx, c.docs, toolRecommend, map[string]any{"url": url})
	if err != nil {
		return nil, err
	}
	refs, err := decodeReferences(text)
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", toolRecommend, err)
	}
	return refs, nil
}

// Pricing resolves the subject to a pricing service code and calls get_pricing.
func (c *Client) Pricing(ctx context.Context, subject string) (domain.Pricing, error) {
	if c.pricing == nil {
		return domain.UnavailablePricing("no pricing server configured"), nil
	}

	code, err := c.findServiceCode(ctx, subject)
	if err != nil {
		return domain.Pricing{}, err
	}
	if code == "" {
		return domain.UnavailablePricing(fmt.Sprintf("no pricing service code for %s", subject)), nil
	}

	text, err := callText(ctx, c.pricing, toolPricing, map[string]any{
		"service_code": code,
		"region":       c.region,
	})
	if err != nil {
		return domain.Pricing{}, err
	}

	var payload pricingPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return domain.Pricing{}, fmt.Errorf("decode %s result: %w", toolPricing, err)
	}
	pricing := payload.toPricing(code)

	// Attribute names only enrich a known price.
	attrs, err := c.pricingAttributes(ctx, code)
	if err != nil {
		c.logger.Warn("pricing attributes unavailable", "service_code", code, "error", err)
	} else {
		pricing.Dimensions = attrs
	}
	return pricing, nil
}

func (c *Client) pricingAttributes(ctx context.Context, code string) ([]string, error) {
	text, err := callText(ctx, c.pricing, toolPricingAttributes, map[string]any{"service_code": code})
	if err != nil {
		return nil, err
	}
	attrs, err := decodeAttributes(text)
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", toolPricingAttributes, err)
	}
	return attrs, nil
}

func (c *Client) findServiceCode(ctx context.Context, subject string) (string, error) {
	hint := strings.ToLower(domain.ServiceCodeHint(subject))
	if hint == "" {
		return "", nil
	}
	codes, err := c.serviceCodes(ctx)
	if err != nil {
		return "", err
	}
	for _, code := range codes {
		if strings.Contains(strings.ToLower(code), hint) {
			return code, nil
		}
	}
	return "", nil
}

// serviceCodes fetches the code list once per client.
func (c *Client) serviceCodes(ctx context.Context) ([]string, error) {
	c.codesMu.Lock()
	defer c.codesMu.Unlock()
	if c.codes != nil {
		return c.codes, nil
	}

	text, err := callText(ctx, c.pricing, toolPricingServiceCodes, map[string]any{})
	if err != nil {
		return nil, err
	}
	codes, err := decodeCodes(text)
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", toolPricingServiceCodes, err)
	}
	c.codes = codes
	return codes, nil
}

func callText(ctx context.Context, session *sdkmcp.ClientSession, tool string, args map[string]any) (string, error) {
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call %s: %w", tool, err)
	}
	text := firstText(res)
	if res.IsError {
		if text == "" {
			text = "unknown error"
		}
		return "", fmt.Errorf("call %s: tool error: %s", tool, text)
	}
	if text == "" {
		return "", fmt.Errorf("call %s: no text content", tool)
	}
	return text, nil
}

func firstText(res *sdkmcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
