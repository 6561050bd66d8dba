package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/scanner"
)

const blogPage = `
<html><body>
  <div class="news-post">
    <h3><a href="/blogs/aws/amazon-bedrock-agents">Amazon Bedrock announces multi-agent collaboration</a></h3>
    <p class="description">Agents can now coordinate on complex tasks.</p>
  </div>
  <article>
    <h2><a href="https://aws.amazon.com/lambda/">AWS Lambda now supports Node.js 22</a></h2>
    <p>Runtime update for Lambda functions.</p>
  </article>
  <div class="news-post">
    <h3><a href="/blogs/aws/amazon-bedrock-agents">Amazon Bedrock announces multi-agent collaboration</a></h3>
  </div>
  <article><h2>Short</h2></article>
  <article><h2>Quarterly earnings call schedule</h2></article>
</body></html>`

func TestExtractServiceName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Amazon Bedrock announces Claude 3.5 Sonnet v2": "Amazon Bedrock",
		"AWS Lambda now supports Node.js 22":            "AWS Lambda",
		"Introducing amazon s3 Vectors":                 "amazon s3 Vectors",
		"Amazon EKS, now with auto mode":                "Amazon EKS",
		"New Graviton5 Instances Arrive":                "New Graviton5 Instances Arrive",
	}
	for title, want := range cases {
		if got := ExtractServiceName(title); got != want {
			t.Fatalf("ExtractServiceName(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestExtractAnnouncements(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blogPage))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	base, _ := url.Parse("https://aws.amazon.com/blogs/news/")
	now := time.Date(2025, time.December, 2, 0, 0, 0, 0, time.UTC)

	got := extractAnnouncements(doc, base, now, defaultMaxCandidates)
	if len(got) != 2 {
		t.Fatalf("expected 2 announcements, got %d: %+v", len(got), got)
	}

	first := got[0]
	if first.ServiceName != "Amazon Bedrock" {
		t.Fatalf("unexpected service name: %s", first.ServiceName)
	}
	if first.SourceURL != "https://aws.amazon.com/blogs/aws/amazon-bedrock-agents" {
		t.Fatalf("unexpected link: %s", first.SourceURL)
	}
	if first.RawSummary != "Agents can now coordinate on complex tasks." {
		t.Fatalf("unexpected summary: %q", first.RawSummary)
	}
	if !first.DiscoveredAt.Equal(now) {
		t.Fatalf("unexpected discovery time: %v", first.DiscoveredAt)
	}

	second := got[1]
	if second.ServiceName != "AWS Lambda" || second.RawSummary != "Runtime update for Lambda functions." {
		t.Fatalf("unexpected second announcement: %+v", second)
	}
}

func TestExtractAnnouncementsFallsBackToHeadings(t *testing.T) {
	t.Parallel()

	html := `<main><h2>Amazon S3 Express One Zone storage class</h2><h4>AWS Lambda durable functions</h4></main>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	got := extractAnnouncements(doc, nil, time.Now(), defaultMaxCandidates)
	names := make([]string, 0, len(got))
	for _, ann := range got {
		names = append(names, ann.ServiceName)
	}
	if diff := cmp.Diff([]string{"Amazon S3 Express One", "AWS Lambda"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected user agent header")
		}
		_, _ = w.Write([]byte(blogPage))
	}))
	defer server.Close()

	sc := NewHTMLScanner(server.Client(), nil)
	got, err := sc.Scan(context.Background(), scanner.Request{SourceURL: server.URL + "/news"})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 announcements, got %d", len(got))
	}
	if !strings.HasPrefix(got[0].SourceURL, server.URL) {
		t.Fatalf("relative link not resolved against source: %s", got[0].SourceURL)
	}
}

func TestHTMLScannerStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	sc := NewHTMLScanner(server.Client(), nil)
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceURL: server.URL}); err == nil {
		t.Fatalf("expected error on 403")
	}
}

func TestFeedScannerScan(t *testing.T) {
	t.Parallel()

	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>What's New</title>
  <item>
    <title>Amazon Bedrock AgentCore is now generally available</title>
    <link>https://aws.amazon.com/about-aws/whats-new/agentcore</link>
    <description>&lt;p&gt;Deploy &lt;b&gt;agents&lt;/b&gt; securely.&lt;/p&gt;</description>
    <pubDate>Tue, 02 Dec 2025 17:00:00 GMT</pubDate>
  </item>
  <item>
    <title>AWS Lambda adds tenant isolation</title>
    <link>https://aws.amazon.com/about-aws/whats-new/lambda-tenant</link>
    <description>Isolation per tenant.</description>
  </item>
</channel></rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	now := time.Date(2025, time.December, 3, 0, 0, 0, 0, time.UTC)
	sc := NewFeedScanner(server.Client(), nil)
	got, err := sc.Scan(context.Background(), scanner.Request{SourceURL: server.URL + "/feed", Now: now})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 announcements, got %d", len(got))
	}
	if got[0].ServiceName != "Amazon Bedrock AgentCore" {
		t.Fatalf("unexpected service name: %s", got[0].ServiceName)
	}
	if got[0].RawSummary != "Deploy agents securely." {
		t.Fatalf("markup not stripped: %q", got[0].RawSummary)
	}
	if got[0].DiscoveredAt.Day() != 2 {
		t.Fatalf("expected pubDate to be used, got %v", got[0].DiscoveredAt)
	}
	if !got[1].DiscoveredAt.Equal(now) {
		t.Fatalf("expected scan time for undated item, got %v", got[1].DiscoveredAt)
	}
}

func TestDetectScanner(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://aws.amazon.com/about-aws/whats-new/recent/feed/": "feed",
		"https://aws.amazon.com/blogs/aws/feed":                   "feed",
		"https://example.com/news.rss?x=1":                        "feed",
		"https://www.aboutamazon.com/aws-reinvent-news-updates":   "html",
		"https://example.com/feedback":                            "html",
	}
	for in, want := range cases {
		if got := DetectScanner(in); got != want {
			t.Fatalf("DetectScanner(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeScanner struct {
	name    string
	results []domain.Announcement
	err     error
}

func (f fakeScanner) Name() string { return f.name }

func (f fakeScanner) Scan(context.Context, scanner.Request) ([]domain.Announcement, error) {
	return f.results, f.err
}

func TestStrategySourceWrapsFailures(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(fakeScanner{name: "html", err: errors.New("boom")})
	reg.Register(fakeScanner{name: "feed"})

	src := NewStrategySource(reg, AutoScanner, nil, nil)

	_, err := src.Fetch(context.Background(), "https://example.com/news")
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}

	_, err = src.Fetch(context.Background(), "https://example.com/feed")
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable for empty result, got %v", err)
	}

	_, err = src.Fetch(context.Background(), " ")
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable for empty url, got %v", err)
	}
}

func TestStrategySourceUsesConfiguredScanner(t *testing.T) {
	t.Parallel()

	want := SampleAnnouncements(time.Time{})
	reg := scanner.NewRegistry()
	reg.Register(fakeScanner{name: "feed", results: want})

	src := NewStrategySource(reg, "feed", nil, nil)
	got, err := src.Fetch(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("announcements mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleAnnouncementsDeterministic(t *testing.T) {
	t.Parallel()

	a := SampleAnnouncements(time.Unix(1, 0))
	b := SampleAnnouncements(time.Unix(2, 0))
	if len(a) != 3 {
		t.Fatalf("expected 3 sample announcements, got %d", len(a))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].ServiceName != b[i].ServiceName {
			t.Fatalf("sample announcement %d differs between calls", i)
		}
	}
}

type requestRecorder struct {
	got *scanner.Request
}

func (r requestRecorder) Name() string { return "html" }

func (r requestRecorder) Scan(_ context.Context, req scanner.Request) ([]domain.Announcement, error) {
	*r.got = req
	return SampleAnnouncements(req.Now), nil
}

func TestStrategySourcePassesLimitOption(t *testing.T) {
	t.Parallel()

	var req scanner.Request
	reg := scanner.NewRegistry()
	reg.Register(requestRecorder{got: &req})

	src := NewStrategySource(reg, "html", map[string]string{LimitOption: "7"}, nil)
	if _, err := src.Fetch(context.Background(), "https://example.com/page"); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if req.Limit != 7 || req.SourceURL != "https://example.com/page" {
		t.Fatalf("unexpected scan request: %+v", req)
	}
	if optionInt(map[string]string{LimitOption: "-3"}, LimitOption) != 0 {
		t.Fatalf("negative limit should mean no limit")
	}
}
