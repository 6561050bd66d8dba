package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/metrics"
	"LaunchDigest/internal/ports"
)

const (
	defaultSearchLimit = 3
	defaultStoreTTL    = 7 * 24 * time.Hour
)

// Deps wires the research collaborators. Docs and Cache are required.
type Deps struct {
	Docs        ports.DocumentationLookup
	Pricing     ports.PricingLookup
	Summarizer  ports.Summarizer
	Store       ports.DetailStore
	Cache       *Cache
	Metrics     ports.MetricsSink
	Logger      *slog.Logger
	SearchLimit int
	StoreTTL    time.Duration
}

// Researcher implements ports.Researcher with per-run memoization by normalized
// service name.
type Researcher struct {
	docs        ports.DocumentationLookup
	pricing     ports.PricingLookup
	summarizer  ports.Summarizer
	store       ports.DetailStore
	cache       *Cache
	metrics     ports.MetricsSink
	logger      *slog.Logger
	searchLimit int
	storeTTL    time.Duration
	now         func() time.Time
}

var _ ports.Researcher = (*Researcher)(nil)

// New constructs a researcher. A nil cache gets a fresh run-scoped one.
func New(deps Deps) *Researcher {
	cache := deps.Cache
	if cache == nil {
		cache = NewCache()
	}
	limit := deps.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	ttl := deps.StoreTTL
	if ttl <= 0 {
		ttl = defaultStoreTTL
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sink := deps.Metrics
	if sink == nil {
		sink = metrics.Nop
	}
	return &Researcher{
		docs:        deps.Docs,
		pricing:     deps.Pricing,
		summarizer:  deps.Summarizer,
		store:       deps.Store,
		cache:       cache,
		metrics:     sink,
		logger:      logger,
		searchLimit: limit,
		storeTTL:    ttl,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Research returns the research for ann. Announcements sharing a normalized
// service name are looked up once per run.
func (r *Researcher) Research(ctx context.Context, ann domain.Announcement) (domain.ResearchResult, error) {
	key := ann.Key()
	if key == "" {
		return domain.ResearchResult{}, fmt.Errorf("%w: announcement %s has no service name", domain.ErrResearchUnavailable, ann.ID)
	}

	detail, hit, err := r.cache.Do(ctx, key, func(ctx context.Context) (domain.ServiceDetail, error) {
		return r.lookup(ctx, key, ann.ServiceName)
	})
	r.metrics.CacheLookup(hit)
	if err != nil {
		if errors.Is(err, domain.ErrResearchUnavailable) {
			return domain.ResearchResult{}, err
		}
		return domain.ResearchResult{}, fmt.Errorf("%w: %w", domain.ErrResearchUnavailable, err)
	}
	if hit {
		r.logger.Debug("research cache hit", "service", ann.ServiceName)
	}

	return detail.ResultFor(ann), nil
}

func (r *Researcher) lookup(ctx context.Context, key, subject string) (domain.ServiceDetail, error) {
	if r.store != nil {
		detail, ok, err := r.store.Load(ctx, key)
		switch {
		case err != nil:
			r.logger.Warn("detail store load failed", "service", subject, "error", err)
		case ok:
			r.logger.Debug("detail store hit", "service", subject)
			return detail, nil
		}
	}

	if r.docs == nil {
		return domain.ServiceDetail{}, fmt.Errorf("%w: no documentation source configured", domain.ErrResearchUnavailable)
	}

	r.logger.Info("researching service", "service", subject)

	refs, err := r.docs.Search(ctx, subject, r.searchLimit)
	if err != nil {
		return domain.ServiceDetail{}, fmt.Errorf("%w: search documentation for %s: %w", domain.ErrResearchUnavailable, subject, err)
	}
	if len(refs) == 0 {
		return domain.ServiceDetail{}, fmt.Errorf("%w: no documentation found for %s", domain.ErrResearchUnavailable, subject)
	}

	content, err := r.docs.Read(ctx, refs[0].URL)
	if err != nil {
		r.logger.Warn("read documentation failed", "service", subject, "url", refs[0].URL, "error", err)
		content = ""
	}

	features := extractFeatures(content)
	detail := domain.ServiceDetail{
		ServiceName:       subject,
		Overview:          extractOverview(subject, content),
		ProblemsSolved:    extractProblems(content),
		Benefits:          features,
		UseCases:          extractUseCases(content),
		Examples:          usageExamples(subject),
		DocumentationURLs: docURLs(refs),
	}

	if r.summarizer != nil && strings.TrimSpace(content) != "" {
		highlights, err := r.summarizer.Highlights(ctx, subject, content)
		if err != nil {
			r.logger.Warn("summarizer failed, keeping extracted text", "service", subject, "error", err)
		} else {
			applyHighlights(&detail, highlights)
		}
	}

	detail.RecommendedTopics = r.recommendedTopics(ctx, subject, refs[0].URL)
	detail.Pricing = r.lookupPricing(ctx, subject)
	detail.FetchedAt = r.now()

	if r.store != nil {
		if err := r.store.Save(ctx, key, detail, r.storeTTL); err != nil {
			r.logger.Warn("detail store save failed", "service", subject, "error", err)
		}
	}

	return detail, nil
}

func (r *Researcher) recommendedTopics(ctx context.Context, subject, url string) []string {
	recs, err := r.docs.Recommend(ctx, url)
	if err != nil {
		r.logger.Warn("recommendations failed", "service", subject, "url", url, "error", err)
		return nil
	}
	topics := make([]string, 0, len(recs))
	for _, rec := range recs {
		if title := strings.TrimSpace(rec.Title); title != "" {
			topics = append(topics, title)
		}
	}
	return topics
}

func (r *Researcher) lookupPricing(ctx context.Context, subject string) domain.Pricing {
	if r.pricing == nil {
		return domain.UnavailablePricing("no pricing source configured")
	}
	pricing, err := r.pricing.Pricing(ctx, subject)
	if err != nil {
		r.logger.Warn("pricing lookup failed", "service", subject, "error", err)
		return domain.UnavailablePricing(fmt.Sprintf("pricing lookup failed: %v", err))
	}
	if pricing.Kind == "" {
		return domain.UnavailablePricing("")
	}
	return pricing
}

func applyHighlights(detail *domain.ServiceDetail, h domain.Highlights) {
	if text := strings.TrimSpace(h.Overview); text != "" {
		detail.Overview = text
	}
	if len(h.ProblemsSolved) > 0 {
		detail.ProblemsSolved = h.ProblemsSolved
	}
	if len(h.Benefits) > 0 {
		detail.Benefits = h.Benefits
	}
}

func docURLs(refs []domain.DocReference) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.URL != "" {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}
