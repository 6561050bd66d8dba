package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
)

// Recorder collects run metrics on a private registry and writes them as a
// node-exporter textfile. All methods are safe on a nil receiver.
type Recorder struct {
	registry *prometheus.Registry
	path     string

	announcements *prometheus.CounterVec
	failures      *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	captures      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	lastRun       prometheus.Gauge
}

var _ ports.MetricsSink = (*Recorder)(nil)

// Nop discards every observation.
var Nop ports.MetricsSink = nopSink{}

type nopSink struct{}

func (nopSink) Announcements(string, int)                {}
func (nopSink) Failure(domain.Stage)                     {}
func (nopSink) CacheLookup(bool)                         {}
func (nopSink) Capture(string)                           {}
func (nopSink) ObserveStage(domain.Stage, time.Duration) {}
func (nopSink) Flush() error                             { return nil }

// New registers all collectors. An empty path disables Flush.
func New(path string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		path:     path,
		announcements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchdigest_announcements_total",
				Help: "Announcements processed, by origin (live or fallback).",
			},
			[]string{"origin"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchdigest_stage_failures_total",
				Help: "Recovered failures by pipeline stage.",
			},
			[]string{"stage"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchdigest_research_cache_lookups_total",
				Help: "Research memo cache lookups by result.",
			},
			[]string{"result"},
		),
		captures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchdigest_captures_total",
				Help: "Visual capture attempts by status.",
			},
			[]string{"status"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchdigest_stage_duration_seconds",
				Help:    "Duration of pipeline stages.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"stage"},
		),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "launchdigest_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
}

// Registry exposes the underlying registry (tests, custom exporters).
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Announcements adds n announcements of the given origin ("live" or "fallback").
func (r *Recorder) Announcements(origin string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.announcements.WithLabelValues(origin).Add(float64(n))
}

// Failure counts a recovered failure for a stage.
func (r *Recorder) Failure(stage domain.Stage) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(string(stage)).Inc()
}

// CacheLookup counts a memo cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Capture counts a capture attempt ("success", "empty" or "failure").
func (r *Recorder) Capture(status string) {
	if r == nil {
		return
	}
	r.captures.WithLabelValues(status).Inc()
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage domain.Stage, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

// Flush stamps the run time and writes the textfile, if a path is configured.
func (r *Recorder) Flush() error {
	if r == nil || r.path == "" {
		return nil
	}
	r.lastRun.SetToCurrentTime()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
