package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"LaunchDigest/internal/domain"
)

func TestRecorderCounts(t *testing.T) {
	t.Parallel()

	r := New("")
	r.Announcements("fallback", 3)
	r.Failure(domain.StageResearch)
	r.Failure(domain.StageResearch)
	r.CacheLookup(true)
	r.CacheLookup(false)
	r.CacheLookup(true)
	r.Capture("success")
	r.ObserveStage(domain.StageFetch, 250*time.Millisecond)

	if got := testutil.ToFloat64(r.announcements.WithLabelValues("fallback")); got != 3 {
		t.Fatalf("expected 3 fallback announcements, got %v", got)
	}
	if got := testutil.ToFloat64(r.failures.WithLabelValues("research")); got != 2 {
		t.Fatalf("expected 2 research failures, got %v", got)
	}
	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")); got != 2 {
		t.Fatalf("expected 2 cache hits, got %v", got)
	}
	if got := testutil.CollectAndCount(r.stageDuration); got != 1 {
		t.Fatalf("expected 1 histogram series, got %d", got)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	t.Parallel()

	var r *Recorder
	r.Announcements("live", 1)
	r.Failure(domain.StageCapture)
	r.CacheLookup(false)
	r.Capture("failure")
	r.ObserveStage(domain.StageAssemble, time.Second)
	if err := r.Flush(); err != nil {
		t.Fatalf("nil flush: %v", err)
	}
}

func TestNopSinkDiscards(t *testing.T) {
	t.Parallel()

	Nop.Announcements("fallback", 3)
	Nop.Failure(domain.StageResearch)
	Nop.CacheLookup(true)
	Nop.Capture("success")
	Nop.ObserveStage(domain.StageFetch, time.Second)
	if err := Nop.Flush(); err != nil {
		t.Fatalf("nop flush: %v", err)
	}
}

func TestFlushWritesTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "metrics", "launchdigest.prom")
	r := New(path)
	r.Capture("empty")

	if err := r.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{"launchdigest_captures_total", "launchdigest_last_run_timestamp_seconds"} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("textfile missing %s:\n%s", want, raw)
		}
	}
}
