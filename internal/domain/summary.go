package domain

import "time"

// Stage names a pipeline stage in failure records and metrics.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageResearch Stage = "research"
	StageCapture  Stage = "capture"
	StageAssemble Stage = "assemble"
	StagePersist  Stage = "persist"
)

// FailureRecord captures one recovered per-stage or per-item failure.
type FailureRecord struct {
	Stage          Stage  `json:"stage"`
	AnnouncementID string `json:"announcement_id,omitempty"`
	ServiceName    string `json:"service_name,omitempty"`
	Cause          string `json:"cause"`
}

// SkippedRecord is an announcement left out on purpose (e.g. beyond max items).
type SkippedRecord struct {
	AnnouncementID string `json:"announcement_id"`
	ServiceName    string `json:"service_name"`
	Reason         string `json:"reason"`
}

// ItemStatus is the one-line status of a processed announcement.
type ItemStatus struct {
	Index            int            `json:"index"`
	AnnouncementID   string         `json:"announcement_id"`
	ServiceName      string         `json:"service_name"`
	Research         ResearchStatus `json:"research"`
	CaptureAttempted bool           `json:"capture_attempted"`
	Artifacts        int            `json:"artifacts"`
}

// RunSummary aggregates a finished run. It is built once and never mutated afterwards.
type RunSummary struct {
	RunID              string          `json:"run_id"`
	SourceURL          string          `json:"source_url"`
	StartedAt          time.Time       `json:"started_at"`
	FinishedAt         time.Time       `json:"finished_at"`
	DiscoveredCount    int             `json:"discovered_count"`
	TotalAnnouncements int             `json:"total_announcements"`
	ResearchedCount    int             `json:"researched_count"`
	DegradedCount      int             `json:"degraded_count"`
	CaptureCount       int             `json:"capture_count"`
	ArtifactCount      int             `json:"artifact_count"`
	UsedSampleData     bool            `json:"used_sample_data"`
	Partial            bool            `json:"partial"`
	Failures           []FailureRecord `json:"failures"`
	Skipped            []SkippedRecord `json:"skipped"`
	Items              []ItemStatus    `json:"items"`
	OutputDocumentRef  string          `json:"output_document_ref"`
}

// Duration is the wall time between start and finish.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// FailuresFor returns failures recorded for the given stage.
func (s RunSummary) FailuresFor(stage Stage) []FailureRecord {
	var out []FailureRecord
	for _, f := range s.Failures {
		if f.Stage == stage {
			out = append(out, f)
		}
	}
	return out
}
