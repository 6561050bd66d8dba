package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
	"LaunchDigest/internal/scanner"
)

const (
	// AutoScanner selects the feed or html strategy from the source URL.
	AutoScanner = "auto"
	// LimitOption caps how many candidates a scanner extracts from one page.
	LimitOption = "limit"
)

// StrategySource implements AnnouncementSource via registered scanner strategies.
type StrategySource struct {
	registry    *scanner.Registry
	scannerName string
	options     map[string]string
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.AnnouncementSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured strategy name.
func NewStrategySource(reg *scanner.Registry, scannerName string, options map[string]string, log *slog.Logger) *StrategySource {
	if scannerName == "" {
		scannerName = AutoScanner
	}
	return &StrategySource{
		registry:    reg,
		scannerName: scannerName,
		options:     options,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Fetch runs the selected scanner. Every failure, including an empty result, is
// reported as domain.ErrSourceUnavailable so the caller can substitute sample data.
func (s *StrategySource) Fetch(ctx context.Context, sourceURL string) ([]domain.Announcement, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("%w: scanner registry is not configured", domain.ErrSourceUnavailable)
	}
	if strings.TrimSpace(sourceURL) == "" {
		return nil, fmt.Errorf("%w: empty source url", domain.ErrSourceUnavailable)
	}

	name := s.scannerName
	if name == AutoScanner {
		name = DetectScanner(sourceURL)
	}
	s.debug("fetch announcements", "url", sourceURL, "scanner", name)

	strategy, err := s.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	results, err := strategy.Scan(ctx, scanner.Request{
		SourceURL: sourceURL,
		Now:       s.now(),
		Limit:     optionInt(s.options, LimitOption),
		Options:   s.options,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s scanner: %w", domain.ErrSourceUnavailable, name, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no announcements found at %s", domain.ErrSourceUnavailable, sourceURL)
	}

	s.debug("strategy source done", "scanner", name, "announcements", len(results))
	return results, nil
}

// DetectScanner guesses the strategy for a URL: feeds by path, everything else as HTML.
func DetectScanner(sourceURL string) string {
	lower := strings.ToLower(sourceURL)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, marker := range []string{".rss", ".xml", ".atom", "/feed", "/rss", "/atom"} {
		if strings.HasSuffix(lower, marker) || strings.Contains(lower, marker+"/") {
			return "feed"
		}
	}
	return "html"
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func optionInt(options map[string]string, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(options[key]))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
