package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/metrics"
	"LaunchDigest/internal/ports"
)

const (
	reasonMaxItems  = "max items"
	reasonCancelled = "run cancelled"

	sideEffectTimeout = 15 * time.Second
)

// RunConfig is the per-run input of the pipeline.
type RunConfig struct {
	SourceURL string
	// MaxItems <= 0 processes every announcement.
	MaxItems int
	// MaxCaptures < 0 is unlimited, 0 disables captures.
	MaxCaptures     int
	CaptureEnabled  bool
	Concurrency     int
	FetchTimeout    time.Duration
	ResearchTimeout time.Duration
	CaptureTimeout  time.Duration
	Title           string
	Subtitle        string
}

// Validate rejects configurations the pipeline cannot run with.
func (c RunConfig) Validate() error {
	var errs []error
	if c.SourceURL == "" {
		errs = append(errs, errors.New("source url is empty"))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.FetchTimeout <= 0 || c.ResearchTimeout <= 0 || c.CaptureTimeout <= 0 {
		errs = append(errs, errors.New("every stage timeout must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c RunConfig) captureAllowed(index int) bool {
	if !c.CaptureEnabled {
		return false
	}
	return c.MaxCaptures < 0 || index < c.MaxCaptures
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Source, Researcher, Assembler and Store are required.
type PipelineDeps struct {
	Source     ports.AnnouncementSource
	Researcher ports.Researcher
	Capturer   ports.Capturer
	Assembler  ports.Assembler
	Store      ports.ArtifactStore
	Runs       ports.RunRepository
	Notifier   ports.Notifier
	Metrics    ports.MetricsSink
	// Fallback supplies sample announcements when the source is unavailable.
	Fallback func(now time.Time) []domain.Announcement
	Logger   *slog.Logger
	Now      func() time.Time
}

// Pipeline implements the fetch, research, capture, assemble and persist workflow.
type Pipeline struct {
	source     ports.AnnouncementSource
	researcher ports.Researcher
	capturer   ports.Capturer
	assembler  ports.Assembler
	store      ports.ArtifactStore
	runs       ports.RunRepository
	notifier   ports.Notifier
	metrics    ports.MetricsSink
	fallback   func(time.Time) []domain.Announcement
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	sink := deps.Metrics
	if sink == nil {
		sink = metrics.Nop
	}
	return &Pipeline{
		source:     deps.Source,
		researcher: deps.Researcher,
		capturer:   deps.Capturer,
		assembler:  deps.Assembler,
		store:      deps.Store,
		runs:       deps.Runs,
		notifier:   deps.Notifier,
		metrics:    sink,
		fallback:   deps.Fallback,
		logger:     logger.With("component", "pipeline"),
		now:        now,
	}
}

type itemResult struct {
	record           domain.EnrichedRecord
	failures         []domain.FailureRecord
	captureAttempted bool
	cancelled        bool
}

// Run executes one pipeline run. Per-item failures are recorded in the summary;
// only configuration, assembly and output errors are returned.
func (p *Pipeline) Run(ctx context.Context, cfg RunConfig) (domain.RunSummary, error) {
	started := p.now()

	if err := cfg.Validate(); err != nil {
		return domain.RunSummary{}, err
	}
	if p.source == nil || p.researcher == nil || p.assembler == nil || p.store == nil {
		return domain.RunSummary{}, fmt.Errorf("%w: pipeline is missing a required collaborator", domain.ErrInvalidConfig)
	}
	if err := p.store.Prepare(); err != nil {
		return domain.RunSummary{}, outputErr(err)
	}

	summary := domain.RunSummary{
		RunID:     uuid.NewString(),
		SourceURL: cfg.SourceURL,
		StartedAt: started,
	}
	log := p.logger.With("run_id", summary.RunID)

	stageStart := p.now()
	fetched := p.fetch(ctx, cfg)
	p.metrics.ObserveStage(domain.StageFetch, p.now().Sub(stageStart))

	discovered := domain.Dedupe(fetched.Value)
	if fetched.Kind == domain.OutcomeFallback {
		summary.UsedSampleData = true
		summary.Failures = append(summary.Failures, domain.FailureRecord{Stage: domain.StageFetch, Cause: fetched.Reason})
		p.metrics.Failure(domain.StageFetch)
		p.metrics.Announcements("fallback", len(discovered))
		log.Warn("source unavailable, using sample announcements", "source", cfg.SourceURL, "reason", fetched.Reason, "count", len(discovered))
	} else {
		p.metrics.Announcements("live", len(discovered))
		log.Info("announcements discovered", "count", len(discovered))
	}

	selected, skipped := truncate(discovered, cfg.MaxItems)
	summary.DiscoveredCount = len(discovered)
	summary.TotalAnnouncements = len(selected)
	summary.Skipped = skipped
	if len(skipped) > 0 {
		log.Info("announcements beyond max items skipped", "kept", len(selected), "skipped", len(skipped))
	}

	stageStart = p.now()
	slots := p.processItems(ctx, cfg, selected)
	p.metrics.ObserveStage(domain.StageResearch, p.now().Sub(stageStart))

	records := make([]domain.EnrichedRecord, len(slots))
	var artifacts []domain.VisualArtifact
	research := make([]domain.ResearchResult, len(slots))
	for i, slot := range slots {
		records[i] = slot.record
		research[i] = slot.record.Research
		artifacts = append(artifacts, slot.record.Artifacts...)

		summary.Failures = append(summary.Failures, slot.failures...)
		if slot.record.Research.Degraded() {
			summary.DegradedCount++
		} else {
			summary.ResearchedCount++
		}
		if slot.captureAttempted {
			summary.CaptureCount++
		}
		if slot.cancelled {
			summary.Partial = true
		}
		summary.ArtifactCount += len(slot.record.Artifacts)
		summary.Items = append(summary.Items, domain.ItemStatus{
			Index:            i,
			AnnouncementID:   slot.record.Announcement.ID,
			ServiceName:      slot.record.Announcement.ServiceName,
			Research:         slot.record.Research.Status,
			CaptureAttempted: slot.captureAttempted,
			Artifacts:        len(slot.record.Artifacts),
		})
	}
	if ctx.Err() != nil {
		summary.Partial = true
	}
	for _, f := range summary.Failures {
		if f.Stage != domain.StageFetch {
			p.metrics.Failure(f.Stage)
		}
	}

	// Assembly and persistence finish even when the run was cancelled so the
	// partial result is written and flagged.
	outCtx := context.WithoutCancel(ctx)

	stageStart = p.now()
	doc, err := p.assembler.Assemble(outCtx, records, domain.DocumentMeta{
		Title:          cfg.Title,
		Subtitle:       cfg.Subtitle,
		UsedSampleData: summary.UsedSampleData,
		Partial:        summary.Partial,
	})
	p.metrics.ObserveStage(domain.StageAssemble, p.now().Sub(stageStart))
	if err != nil {
		return summary, fmt.Errorf("%w: %w", domain.ErrAssemblyFailed, err)
	}

	stageStart = p.now()
	if err := p.persist(&summary, cfg, discovered, research, artifacts, doc); err != nil {
		return summary, err
	}
	p.metrics.ObserveStage(domain.StagePersist, p.now().Sub(stageStart))

	log.Info("run finished",
		"processed", summary.TotalAnnouncements,
		"degraded", summary.DegradedCount,
		"captures", summary.CaptureCount,
		"failures", len(summary.Failures),
		"partial", summary.Partial,
		"document", summary.OutputDocumentRef,
	)

	p.sideEffects(outCtx, log, summary)
	return summary, nil
}

func (p *Pipeline) fetch(ctx context.Context, cfg RunConfig) domain.Outcome[[]domain.Announcement] {
	anns, err := callWithTimeout(ctx, cfg.FetchTimeout, func(ctx context.Context) ([]domain.Announcement, error) {
		return p.source.Fetch(ctx, cfg.SourceURL)
	})
	if err == nil && len(anns) == 0 {
		err = fmt.Errorf("%w: no announcements found", domain.ErrSourceUnavailable)
	}
	if err != nil {
		var sample []domain.Announcement
		if p.fallback != nil {
			sample = p.fallback(p.now())
		}
		return domain.Fallback(sample, err.Error())
	}
	return domain.Ok(anns)
}

func truncate(anns []domain.Announcement, maxItems int) ([]domain.Announcement, []domain.SkippedRecord) {
	if maxItems <= 0 || len(anns) <= maxItems {
		return anns, nil
	}
	skipped := make([]domain.SkippedRecord, 0, len(anns)-maxItems)
	for _, ann := range anns[maxItems:] {
		skipped = append(skipped, domain.SkippedRecord{
			AnnouncementID: ann.ID,
			ServiceName:    ann.ServiceName,
			Reason:         reasonMaxItems,
		})
	}
	return anns[:maxItems], skipped
}

// processItems runs items on a bounded group. Each task writes only its own
// slot, so results stay in discovery order whatever the completion order.
func (p *Pipeline) processItems(ctx context.Context, cfg RunConfig, anns []domain.Announcement) []itemResult {
	slots := make([]itemResult, len(anns))

	var g errgroup.Group
	g.SetLimit(cfg.Concurrency)
	for i, ann := range anns {
		capture := cfg.captureAllowed(i)
		g.Go(func() error {
			slots[i] = p.processItem(ctx, cfg, ann, capture)
			return nil
		})
	}
	_ = g.Wait()

	return slots
}

func (p *Pipeline) processItem(ctx context.Context, cfg RunConfig, ann domain.Announcement, capture bool) itemResult {
	if ctx.Err() != nil {
		return itemResult{
			record: domain.EnrichedRecord{
				Announcement: ann,
				Research:     domain.UnavailableResearch(ann, reasonCancelled, p.now()),
			},
			failures: []domain.FailureRecord{{
				Stage:          domain.StageResearch,
				AnnouncementID: ann.ID,
				ServiceName:    ann.ServiceName,
				Cause:          reasonCancelled,
			}},
			cancelled: true,
		}
	}

	var res itemResult
	research := p.research(ctx, cfg, ann)
	if research.Kind != domain.OutcomeOK {
		res.failures = append(res.failures, domain.FailureRecord{
			Stage:          domain.StageResearch,
			AnnouncementID: ann.ID,
			ServiceName:    ann.ServiceName,
			Cause:          research.Reason,
		})
		p.logger.Warn("research degraded", "service", ann.ServiceName, "reason", research.Reason)
	}

	var artifacts []domain.VisualArtifact
	if capture && p.capturer != nil {
		res.captureAttempted = true
		arts, err := callWithTimeout(ctx, cfg.CaptureTimeout, func(ctx context.Context) ([]domain.VisualArtifact, error) {
			return p.capturer.Capture(ctx, ann)
		})
		switch {
		case err != nil:
			p.metrics.Capture("failure")
			res.failures = append(res.failures, domain.FailureRecord{
				Stage:          domain.StageCapture,
				AnnouncementID: ann.ID,
				ServiceName:    ann.ServiceName,
				Cause:          err.Error(),
			})
			p.logger.Warn("capture failed", "service", ann.ServiceName, "error", err)
		case len(arts) == 0:
			p.metrics.Capture("empty")
		default:
			p.metrics.Capture("success")
			artifacts = ownArtifacts(ann, arts)
		}
	}

	res.record = domain.EnrichedRecord{
		Announcement: ann,
		Research:     research.Value,
		Artifacts:    artifacts,
	}
	return res
}

func (p *Pipeline) research(ctx context.Context, cfg RunConfig, ann domain.Announcement) domain.Outcome[domain.ResearchResult] {
	result, err := callWithTimeout(ctx, cfg.ResearchTimeout, func(ctx context.Context) (domain.ResearchResult, error) {
		return p.researcher.Research(ctx, ann)
	})
	if err != nil {
		return domain.Degraded(domain.UnavailableResearch(ann, err.Error(), p.now()), err.Error())
	}
	if result.AnnouncementID == "" {
		result.AnnouncementID = ann.ID
	}
	if result.Status == "" {
		result.Status = domain.ResearchOK
	}
	if result.Pricing.Kind == "" {
		result.Pricing = domain.UnavailablePricing("")
	}
	return domain.Ok(result)
}

// ownArtifacts stamps every artifact with the announcement it belongs to.
func ownArtifacts(ann domain.Announcement, arts []domain.VisualArtifact) []domain.VisualArtifact {
	out := make([]domain.VisualArtifact, 0, len(arts))
	for _, art := range arts {
		art.AnnouncementID = ann.ID
		if art.ServiceName == "" {
			art.ServiceName = ann.ServiceName
		}
		out = append(out, art)
	}
	return out
}

func (p *Pipeline) persist(
	summary *domain.RunSummary,
	cfg RunConfig,
	discovered []domain.Announcement,
	research []domain.ResearchResult,
	artifacts []domain.VisualArtifact,
	doc domain.Document,
) error {
	if _, err := p.store.SaveAnnouncements(discovered); err != nil {
		return outputErr(err)
	}
	if _, err := p.store.SaveResearch(research); err != nil {
		return outputErr(err)
	}
	if _, err := p.store.SaveVisuals(artifacts); err != nil {
		return outputErr(err)
	}
	docRef, err := p.store.SaveDocument(doc)
	if err != nil {
		return outputErr(err)
	}

	summary.OutputDocumentRef = docRef
	summary.FinishedAt = p.now()

	if _, err := p.store.SaveReport(BuildReport(cfg.Title, *summary, doc.Summary)); err != nil {
		return outputErr(err)
	}
	if _, err := p.store.SaveSummary(*summary); err != nil {
		return outputErr(err)
	}
	return nil
}

func (p *Pipeline) sideEffects(ctx context.Context, log *slog.Logger, summary domain.RunSummary) {
	if p.runs != nil {
		sctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		if err := p.runs.SaveRun(sctx, summary); err != nil {
			log.Warn("save run history failed", "error", err)
		}
		cancel()
	}

	if err := p.metrics.Flush(); err != nil {
		log.Warn("flush metrics failed", "error", err)
	}

	if p.notifier != nil {
		sctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		if err := p.notifier.PublishDigest(sctx, Digest(summary)); err != nil {
			log.Warn("publish digest failed", "error", err)
		}
		cancel()
	}
}

func outputErr(err error) error {
	if errors.Is(err, domain.ErrOutputWriteFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrOutputWriteFailed, err)
}

// callWithTimeout bounds fn by timeout even if fn ignores its context.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
		}
		return zero, ctx.Err()
	}
}
