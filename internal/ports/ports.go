package ports

import (
	"context"
	"time"

	"LaunchDigest/internal/domain"
)

// AnnouncementSource pulls announcements from an upstream page or feed.
type AnnouncementSource interface {
	Fetch(ctx context.Context, sourceURL string) ([]domain.Announcement, error)
}

// Researcher produces research for one announcement.
type Researcher interface {
	Research(ctx context.Context, ann domain.Announcement) (domain.ResearchResult, error)
}

// DocumentationLookup searches and reads service documentation.
type DocumentationLookup interface {
	Search(ctx context.Context, subject string, limit int) ([]domain.DocReference, error)
	Read(ctx context.Context, url string) (string, error)
	// Recommend lists pages related to url (best practices, security, ...).
	Recommend(ctx context.Context, url string) ([]domain.DocReference, error)
}

// PricingLookup resolves pricing for a subject. A subject without pricing yields
// the Unavailable variant, not an error.
type PricingLookup interface {
	Pricing(ctx context.Context, subject string) (domain.Pricing, error)
}

// Summarizer turns documentation text into narrative highlights (e.g. via an LLM).
type Summarizer interface {
	Highlights(ctx context.Context, subject, docText string) (domain.Highlights, error)
}

// DetailStore persists researched subject detail across runs.
type DetailStore interface {
	Load(ctx context.Context, key string) (domain.ServiceDetail, bool, error)
	Save(ctx context.Context, key string, detail domain.ServiceDetail, ttl time.Duration) error
}

// Capturer captures zero or more visuals for an announcement.
type Capturer interface {
	Capture(ctx context.Context, ann domain.Announcement) ([]domain.VisualArtifact, error)
}

// Assembler renders the ordered enriched records into one document.
type Assembler interface {
	Assemble(ctx context.Context, records []domain.EnrichedRecord, meta domain.DocumentMeta) (domain.Document, error)
}

// ArtifactStore persists intermediate and final run artifacts.
type ArtifactStore interface {
	Prepare() error
	SaveAnnouncements(anns []domain.Announcement) (string, error)
	SaveResearch(results []domain.ResearchResult) (string, error)
	SaveVisuals(artifacts []domain.VisualArtifact) ([]string, error)
	SaveDocument(doc domain.Document) (string, error)
	SaveReport(report string) (string, error)
	SaveSummary(summary domain.RunSummary) (string, error)
}

// RunRepository records run history for auditing.
type RunRepository interface {
	SaveRun(ctx context.Context, summary domain.RunSummary) error
}

// MetricsSink records run metrics and exports them after a run.
type MetricsSink interface {
	Announcements(origin string, n int)
	Failure(stage domain.Stage)
	CacheLookup(hit bool)
	Capture(status string)
	ObserveStage(stage domain.Stage, d time.Duration)
	Flush() error
}

// Notifier publishes the run digest to chat or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}
