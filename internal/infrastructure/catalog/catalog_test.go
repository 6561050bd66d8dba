package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"LaunchDigest/internal/domain"
)

func TestSearchBuildsDocumentationPages(t *testing.T) {
	t.Parallel()

	refs, err := New("").Search(context.Background(), "Amazon  Bedrock", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []string{
		"https://docs.aws.amazon.com/amazon-bedrock/latest/userguide/what-is.html",
		"https://docs.aws.amazon.com/amazon-bedrock/latest/userguide/getting-started.html",
	}
	got := make([]string, 0, len(refs))
	for _, r := range refs {
		got = append(got, r.URL)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("urls mismatch (-want +got):\n%s", diff)
	}
	if refs[0].Title != "Amazon Bedrock - What Is Amazon Bedrock?" {
		t.Fatalf("unexpected title: %q", refs[0].Title)
	}
}

func TestSearchRejectsEmptySubject(t *testing.T) {
	t.Parallel()

	if _, err := New("").Search(context.Background(), "   ", 3); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

func TestReadRendersTitledPage(t *testing.T) {
	t.Parallel()

	body, err := New("").Read(context.Background(), "https://docs.aws.amazon.com/amazon-ec2/latest/userguide/what-is.html")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(body), "# Amazon EC2") {
		t.Fatalf("unexpected heading:\n%s", body)
	}
	if !strings.Contains(body, "## Key Features") || !strings.Contains(body, "## Use Cases") {
		t.Fatalf("expected feature and use case sections:\n%s", body)
	}
}

func TestFindServiceCode(t *testing.T) {
	t.Parallel()

	c := New("")
	cases := map[string]string{
		"Amazon Bedrock":  "AmazonBedrock",
		"AWS Lambda":      "AWSLambda",
		"Amazon S3":       "AmazonS3",
		"Amazon DynamoDB": "AmazonDynamoDB",
	}
	for name, want := range cases {
		got, ok := c.FindServiceCode(name)
		if !ok || got != want {
			t.Fatalf("FindServiceCode(%q) = %q, %v; want %q", name, got, ok, want)
		}
	}
	if _, ok := c.FindServiceCode("Amazon Nova Sonic"); ok {
		t.Fatalf("expected no service code for unknown subject")
	}
}

func TestPricingKnownAndUnavailable(t *testing.T) {
	t.Parallel()

	c := New("eu-west-1")

	known, err := c.Pricing(context.Background(), "AWS Lambda")
	if err != nil {
		t.Fatalf("pricing: %v", err)
	}
	if !known.Available() || known.ServiceCode != "AWSLambda" || known.Model != "Pay-as-you-go" {
		t.Fatalf("unexpected known pricing: %+v", known)
	}
	if len(known.Details) != 3 || !strings.Contains(known.Details[2].Price, "eu-west-1") {
		t.Fatalf("unexpected pricing details: %+v", known.Details)
	}
	if diff := cmp.Diff([]string{"location", "group", "usagetype"}, known.Dimensions); diff != "" {
		t.Fatalf("dimensions mismatch (-want +got):\n%s", diff)
	}

	missing, err := c.Pricing(context.Background(), "Amazon Nova Sonic")
	if err != nil {
		t.Fatalf("unknown subject must not error: %v", err)
	}
	if missing.Kind != domain.PricingUnavailable || missing.Reason == "" {
		t.Fatalf("expected unavailable pricing, got %+v", missing)
	}
}

func TestRecommendListsSiblingPages(t *testing.T) {
	t.Parallel()

	refs, err := New("").Recommend(context.Background(), "https://docs.aws.amazon.com/amazon-bedrock/latest/userguide/what-is.html")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	want := []string{
		"https://docs.aws.amazon.com/amazon-bedrock/latest/userguide/best-practices.html",
		"https://docs.aws.amazon.com/amazon-bedrock/latest/userguide/security.html",
		"https://docs.aws.amazon.com/amazon-bedrock/latest/userguide/monitoring.html",
	}
	got := make([]string, 0, len(refs))
	for _, r := range refs {
		got = append(got, r.URL)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("urls mismatch (-want +got):\n%s", diff)
	}
	if refs[0].Title != "Best Practices" || refs[0].Context == "" {
		t.Fatalf("unexpected first recommendation: %+v", refs[0])
	}

	if _, err := New("").Recommend(context.Background(), "what-is.html"); err == nil {
		t.Fatalf("expected error for relative url")
	}
}
