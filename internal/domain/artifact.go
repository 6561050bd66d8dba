package domain

import (
	"strings"
	"time"
	"unicode"
)

// Standard capture labels.
const (
	LabelMainView    = "main view"
	LabelPricingView = "pricing view"
)

// VisualArtifact is one captured image owned by a single announcement.
type VisualArtifact struct {
	AnnouncementID string    `json:"announcement_id"`
	ServiceName    string    `json:"service_name"`
	Label          string    `json:"label"`
	ImageBytes     []byte    `json:"-"`
	CapturedAt     time.Time `json:"captured_at"`
}

const artifactIDLen = 8

// FileName is the deterministic file name for the artifact.
func (v VisualArtifact) FileName() string {
	return ArtifactFileName(v.ServiceName, v.AnnouncementID, v.Label)
}

// ArtifactFileName derives "<service>_<id>_<label>.png". The announcement ID
// prefix keeps names whose slugs coincide ("Amazon Q Developer" and
// "Amazon Q-Developer") apart; it is omitted when the ID is empty.
func ArtifactFileName(serviceName, announcementID, label string) string {
	name := Slug(serviceName, '_')
	if id := strings.ReplaceAll(announcementID, "-", ""); id != "" {
		if len(id) > artifactIDLen {
			id = id[:artifactIDLen]
		}
		name += "_" + strings.ToLower(id)
	}
	return name + "_" + Slug(label, '_') + ".png"
}

// Slug lower-cases value and replaces every run of non-alphanumerics with sep.
func Slug(value string, sep rune) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteRune(sep)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
