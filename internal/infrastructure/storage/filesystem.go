package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
)

// Layout directories and file names under the output root.
const (
	DataDir          = "data"
	PresentationsDir = "presentations"
	ScreenshotsDir   = "screenshots"

	AnnouncementsFile = "announcements.json"
	ResearchFile      = "research_results.json"
	SummaryFile       = "run_summary.json"
	ReportFile        = "summary_report.txt"
)

// FileStore implements ports.ArtifactStore on the local filesystem.
type FileStore struct {
	root string
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore roots the artifact layout at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Root returns the output directory.
func (s *FileStore) Root() string {
	return s.root
}

// Prepare creates the layout and checks that it is writable.
func (s *FileStore) Prepare() error {
	if s.root == "" {
		return fmt.Errorf("%w: output directory is empty", domain.ErrOutputWriteFailed)
	}
	for _, dir := range []string{DataDir, PresentationsDir, ScreenshotsDir} {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %w", domain.ErrOutputWriteFailed, dir, err)
		}
	}

	check, err := os.CreateTemp(filepath.Join(s.root, DataDir), ".write-check-*")
	if err != nil {
		return fmt.Errorf("%w: check output directory: %w", domain.ErrOutputWriteFailed, err)
	}
	name := check.Name()
	closeErr := check.Close()
	removeErr := os.Remove(name)
	if err := errors.Join(closeErr, removeErr); err != nil {
		return fmt.Errorf("%w: check output directory: %w", domain.ErrOutputWriteFailed, err)
	}
	return nil
}

// SaveAnnouncements writes the ordered announcement list.
func (s *FileStore) SaveAnnouncements(anns []domain.Announcement) (string, error) {
	if anns == nil {
		anns = []domain.Announcement{}
	}
	return s.writeJSON(filepath.Join(DataDir, AnnouncementsFile), anns)
}

// SaveResearch writes the ordered research results.
func (s *FileStore) SaveResearch(results []domain.ResearchResult) (string, error) {
	if results == nil {
		results = []domain.ResearchResult{}
	}
	return s.writeJSON(filepath.Join(DataDir, ResearchFile), results)
}

// SaveVisuals writes one image file per artifact and returns their paths in order.
func (s *FileStore) SaveVisuals(artifacts []domain.VisualArtifact) ([]string, error) {
	paths := make([]string, 0, len(artifacts))
	for _, art := range artifacts {
		path, err := s.writeFile(filepath.Join(ScreenshotsDir, art.FileName()), art.ImageBytes)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveDocument writes the assembled document under presentations/.
func (s *FileStore) SaveDocument(doc domain.Document) (string, error) {
	name := doc.FileName
	if name == "" {
		name = domain.Slug(doc.Title, '_') + ".md"
	}
	return s.writeFile(filepath.Join(PresentationsDir, filepath.Base(name)), doc.Content)
}

// SaveReport writes the human-readable summary report.
func (s *FileStore) SaveReport(report string) (string, error) {
	return s.writeFile(filepath.Join(DataDir, ReportFile), []byte(report))
}

// SaveSummary writes the run summary as JSON.
func (s *FileStore) SaveSummary(summary domain.RunSummary) (string, error) {
	return s.writeJSON(filepath.Join(DataDir, SummaryFile), summary)
}

func (s *FileStore) writeJSON(rel string, value any) (string, error) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: marshal %s: %w", domain.ErrOutputWriteFailed, rel, err)
	}
	return s.writeFile(rel, append(payload, '\n'))
}

// writeFile replaces rel atomically via a temp file in the same directory.
func (s *FileStore) writeFile(rel string, data []byte) (string, error) {
	path := filepath.Join(s.root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", domain.ErrOutputWriteFailed, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("%w: write %s: %w", domain.ErrOutputWriteFailed, rel, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: write %s: %w", domain.ErrOutputWriteFailed, rel, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: close %s: %w", domain.ErrOutputWriteFailed, rel, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: rename %s: %w", domain.ErrOutputWriteFailed, rel, err)
	}
	return path, nil
}
