package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/scanner"
)

const (
	defaultMaxCandidates = 50
	minTitleLength       = 10
	userAgent            = "Mozilla/5.0 (compatible; LaunchDigest/1.0)"
)

var (
	blockSelector   = "article, div[class*='post'], div[class*='article'], div[class*='news'], div[class*='update']"
	headingSelector = "h2, h3, h4"
	titleSelector   = "a, h2, h3, h4"
	descSelector    = "p[class*='desc'], div[class*='desc']"

	announcementKeywords = []string{
		"aws", "amazon", "launch", "announce", "new", "service",
		"feature", "available", "now", "general availability", "ga",
	}
)

// HTMLScanner extracts announcements from a news/blog page.
type HTMLScanner struct {
	client        *http.Client
	maxCandidates int
	logger        *slog.Logger
}

var _ scanner.Scanner = (*HTMLScanner)(nil)

// NewHTMLScanner wires an HTTP client; at most 50 candidate blocks are inspected.
func NewHTMLScanner(client *http.Client, log *slog.Logger) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTMLScanner{client: client, maxCandidates: defaultMaxCandidates, logger: log}
}

// Name identifies the strategy inside the registry.
func (h *HTMLScanner) Name() string {
	return "html"
}

// Scan downloads the page and returns announcements in document order.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Announcement, error) {
	doc, err := h.fetchDocument(ctx, req.SourceURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(req.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %s: %w", req.SourceURL, err)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	limit := h.maxCandidates
	if req.Limit > 0 && req.Limit < limit {
		limit = req.Limit
	}

	results := extractAnnouncements(doc, base, now, limit)
	if h.logger != nil {
		h.logger.Debug("html scan done", "url", req.SourceURL, "announcements", len(results))
	}
	return results, nil
}

func (h *HTMLScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractAnnouncements(doc *goquery.Document, base *url.URL, now time.Time, limit int) []domain.Announcement {
	candidates := doc.Find(blockSelector)
	if candidates.Length() == 0 {
		candidates = doc.Find(headingSelector)
	}

	var (
		collected []domain.Announcement
		seen      = map[string]struct{}{}
	)

	candidates.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= limit {
			return false
		}

		ann, ok := parseCandidate(sel, base, now)
		if !ok {
			return true
		}
		if _, dup := seen[ann.RawTitle]; dup {
			return true
		}
		seen[ann.RawTitle] = struct{}{}
		collected = append(collected, ann)
		return true
	})

	return collected
}

func parseCandidate(sel *goquery.Selection, base *url.URL, now time.Time) (domain.Announcement, bool) {
	titleElem := sel.Find(titleSelector).First()
	if titleElem.Length() == 0 {
		titleElem = sel
	}

	title := domain.CollapseSpaces(titleElem.Text())
	if len(title) <= minTitleLength || !looksLikeAnnouncement(title) {
		return domain.Announcement{}, false
	}

	anchor := titleElem
	if goquery.NodeName(anchor) != "a" {
		anchor = titleElem.Find("a").First()
	}
	link, _ := anchor.Attr("href")

	var description string
	if name := goquery.NodeName(sel); name == "article" || name == "div" {
		description = domain.CollapseSpaces(sel.Find(descSelector).First().Text())
		if description == "" {
			description = domain.CollapseSpaces(sel.Find("p").First().Text())
		}
	}

	return domain.NewAnnouncement(
		ExtractServiceName(title),
		title,
		description,
		resolveLink(base, link),
		now,
	), true
}

func looksLikeAnnouncement(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range announcementKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		if base == nil {
			return ""
		}
		return base.String()
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
