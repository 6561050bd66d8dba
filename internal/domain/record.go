package domain

// EnrichedRecord joins an announcement with its research and captured visuals.
// It is the unit consumed by the document assembler and is only built once every
// applicable stage for the announcement has finished.
type EnrichedRecord struct {
	Announcement Announcement     `json:"announcement"`
	Research     ResearchResult   `json:"research"`
	Artifacts    []VisualArtifact `json:"artifacts"`
}

// Slide is one rendered slide of a document section.
type Slide struct {
	Title string
	Body  string
}

// Section groups the slides rendered for one enriched record.
type Section struct {
	AnnouncementID string
	ServiceName    string
	Slides         []Slide
}

// DocumentMeta carries run-level facts the assembler prints on the title slide.
type DocumentMeta struct {
	Title          string
	Subtitle       string
	UsedSampleData bool
	Partial        bool
}

// Document is the assembled output presentation.
type Document struct {
	Title     string
	FileName  string
	MediaType string
	Sections  []Section
	Content   []byte
	Summary   string
}
