package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/scanner"
)

// FeedScanner reads announcements from an RSS or Atom feed (e.g. a "What's New" feed).
type FeedScanner struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ scanner.Scanner = (*FeedScanner)(nil)

// NewFeedScanner builds a gofeed-backed scanner using the given HTTP client.
func NewFeedScanner(client *http.Client, log *slog.Logger) *FeedScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	fp := gofeed.NewParser()
	fp.Client = client
	fp.UserAgent = userAgent
	return &FeedScanner{parser: fp, logger: log}
}

// Name identifies the strategy inside the registry.
func (f *FeedScanner) Name() string {
	return "feed"
}

// Scan parses the feed and converts items in feed order.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Announcement, error) {
	feed, err := f.parser.ParseURLWithContext(req.SourceURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	results := make([]domain.Announcement, 0, len(feed.Items))
	for _, item := range feed.Items {
		if req.Limit > 0 && len(results) >= req.Limit {
			break
		}
		ann, ok := feedItemToAnnouncement(item, now)
		if !ok {
			continue
		}
		results = append(results, ann)
	}

	if f.logger != nil {
		f.logger.Debug("feed scan done", "url", req.SourceURL, "title", feed.Title, "announcements", len(results))
	}
	return results, nil
}

func feedItemToAnnouncement(item *gofeed.Item, now time.Time) (domain.Announcement, bool) {
	if item == nil {
		return domain.Announcement{}, false
	}
	title := domain.CollapseSpaces(item.Title)
	if title == "" {
		return domain.Announcement{}, false
	}

	discovered := now
	if item.PublishedParsed != nil {
		discovered = item.PublishedParsed.UTC()
	}

	return domain.NewAnnouncement(
		ExtractServiceName(title),
		title,
		plainText(item.Description),
		item.Link,
		discovered,
	), true
}

// plainText strips markup that feeds commonly embed in descriptions.
func plainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return domain.CollapseSpaces(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return domain.CollapseSpaces(fragment)
	}
	return domain.CollapseSpaces(doc.Text())
}
