package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// announcementNamespace scopes announcement IDs derived from normalized service names.
var announcementNamespace = uuid.MustParse("6f1c8a52-3d0e-4b7a-9a57-1f4f2b8e0c11")

// Announcement is one discovered subject (service or feature) extracted from a source page.
type Announcement struct {
	ID           string    `json:"id"`
	ServiceName  string    `json:"service_name"`
	RawTitle     string    `json:"raw_title"`
	RawSummary   string    `json:"raw_summary"`
	SourceURL    string    `json:"source_url"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// NewAnnouncement builds an announcement whose ID is derived from the normalized service name.
func NewAnnouncement(serviceName, title, summary, sourceURL string, discoveredAt time.Time) Announcement {
	serviceName = CollapseSpaces(serviceName)
	return Announcement{
		ID:           AnnouncementID(serviceName),
		ServiceName:  serviceName,
		RawTitle:     strings.TrimSpace(title),
		RawSummary:   strings.TrimSpace(summary),
		SourceURL:    strings.TrimSpace(sourceURL),
		DiscoveredAt: discoveredAt,
	}
}

// Key returns the identity of the announcement: its normalized service name.
func (a Announcement) Key() string {
	return NormalizeName(a.ServiceName)
}

// AnnouncementID is stable for every spelling of the same service name.
func AnnouncementID(serviceName string) string {
	return uuid.NewSHA1(announcementNamespace, []byte(NormalizeName(serviceName))).String()
}

// NormalizeName lower-cases a name and collapses all whitespace runs to one space.
func NormalizeName(name string) string {
	return strings.ToLower(CollapseSpaces(name))
}

// CollapseSpaces trims the value and collapses internal whitespace runs.
func CollapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Dedupe merges announcements sharing a normalized service name.
// The first occurrence wins; later titles, summaries and timestamps are ignored.
// Entries with an empty service name are dropped.
func Dedupe(announcements []Announcement) []Announcement {
	seen := make(map[string]struct{}, len(announcements))
	unique := make([]Announcement, 0, len(announcements))
	for _, ann := range announcements {
		key := ann.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if ann.ID == "" {
			ann.ID = AnnouncementID(ann.ServiceName)
		}
		unique = append(unique, ann)
	}
	return unique
}
