package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"LaunchDigest/internal/domain"
)

func TestOverridesOnlyChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.StringVar(&rootFlags.sourceURL, "source-url", "https://default.example.com", "")
	f.IntVar(&rootFlags.maxServices, "max-services", 10, "")
	f.IntVar(&rootFlags.maxScreenshots, "max-screenshots", 5, "")
	f.BoolVar(&rootFlags.skipScreenshots, "skip-screenshots", false, "")
	f.StringVar(&rootFlags.outputDir, "output-dir", "outputs", "")
	f.IntVar(&rootFlags.concurrency, "concurrency", 4, "")
	f.BoolVar(&rootFlags.verbose, "verbose", false, "")

	if err := f.Parse([]string{"--max-services", "3", "--skip-screenshots", "--verbose"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	o := overridesFrom(cmd)
	if o.MaxServices == nil || *o.MaxServices != 3 {
		t.Fatalf("expected max services override, got %v", o.MaxServices)
	}
	if o.SkipScreenshots == nil || !*o.SkipScreenshots {
		t.Fatalf("expected skip screenshots override")
	}
	if o.SourceURL != nil || o.OutputDir != nil || o.Concurrency != nil || o.MaxScreenshots != nil {
		t.Fatalf("unchanged flags must not override config: %+v", o)
	}
	if !o.Verbose {
		t.Fatalf("expected verbose")
	}
}

func TestFatalErrorIsNotEchoedByCobra(t *testing.T) {
	var stderr, stdout bytes.Buffer
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	rootCmd.SetErr(&stderr)
	rootCmd.SetOut(&stdout)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetOut(nil)
		rootFlags.configPath = ""
	})

	err := rootCmd.Execute()
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if strings.Contains(stderr.String(), "Error:") || strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("cobra should leave error reporting to main:\n%s", stderr.String())
	}
}

func TestRenderSummary(t *testing.T) {
	start := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	out := renderSummary("AWS re:Invent 2025", domain.RunSummary{
		StartedAt:          start,
		FinishedAt:         start.Add(90 * time.Second),
		DiscoveredCount:    12,
		TotalAnnouncements: 10,
		ResearchedCount:    9,
		DegradedCount:      1,
		UsedSampleData:     true,
		Failures:           []domain.FailureRecord{{Stage: domain.StageResearch, Cause: "timeout"}},
		OutputDocumentRef:  "outputs/presentations/aws_re_invent_2025.md",
	})

	for _, want := range []string{
		"AWS re:Invent 2025 - run complete",
		"Services processed: 10 of 12",
		"Degraded: 1",
		"sample announcements",
		"1 failure(s)",
		"aws_re_invent_2025.md",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
