package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"LaunchDigest/internal/domain"
)

func TestFileStoreLayout(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewFileStore(root)
	if err := store.Prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	ann := domain.NewAnnouncement("Amazon Bedrock", "title", "summary", "https://example.com", time.Time{})
	if _, err := store.SaveAnnouncements([]domain.Announcement{ann}); err != nil {
		t.Fatalf("save announcements: %v", err)
	}
	if _, err := store.SaveResearch([]domain.ResearchResult{domain.UnavailableResearch(ann, "down", time.Time{})}); err != nil {
		t.Fatalf("save research: %v", err)
	}
	paths, err := store.SaveVisuals([]domain.VisualArtifact{{ServiceName: "Amazon Bedrock", Label: domain.LabelMainView, ImageBytes: []byte("png")}})
	if err != nil {
		t.Fatalf("save visuals: %v", err)
	}
	docPath, err := store.SaveDocument(domain.Document{Title: "Digest", FileName: "digest.md", Content: []byte("# Digest")})
	if err != nil {
		t.Fatalf("save document: %v", err)
	}
	if _, err := store.SaveReport("report"); err != nil {
		t.Fatalf("save report: %v", err)
	}
	if _, err := store.SaveSummary(domain.RunSummary{RunID: "r1"}); err != nil {
		t.Fatalf("save summary: %v", err)
	}

	for _, rel := range []string{
		"data/announcements.json",
		"data/research_results.json",
		"data/summary_report.txt",
		"data/run_summary.json",
		"presentations/digest.md",
		"screenshots/amazon_bedrock_main_view.png",
	} {
		if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
	}
	if len(paths) != 1 || !strings.HasSuffix(paths[0], "amazon_bedrock_main_view.png") {
		t.Fatalf("unexpected visual paths: %v", paths)
	}
	if docPath != filepath.Join(root, "presentations", "digest.md") {
		t.Fatalf("unexpected document path: %s", docPath)
	}

	raw, err := os.ReadFile(filepath.Join(root, "data", "research_results.json"))
	if err != nil {
		t.Fatalf("read research: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode research: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["announcement_id"] != ann.ID {
		t.Fatalf("research not keyed by announcement id: %v", decoded)
	}

	entries, _ := os.ReadDir(filepath.Join(root, "data"))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestFileStoreEmptyListsAreArrays(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewFileStore(root)
	path, err := store.SaveAnnouncements(nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("expected empty array, got %q", raw)
	}
}

func TestPrepareFailsOnUnwritableDirectory(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	parent := t.TempDir()
	if err := os.Chmod(parent, 0o500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(parent, 0o755) })

	err := NewFileStore(filepath.Join(parent, "out")).Prepare()
	if !errors.Is(err, domain.ErrOutputWriteFailed) {
		t.Fatalf("expected ErrOutputWriteFailed, got %v", err)
	}
}

func TestPrepareFailsWhenRootIsFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "taken")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := NewFileStore(file).Prepare(); !errors.Is(err, domain.ErrOutputWriteFailed) {
		t.Fatalf("expected ErrOutputWriteFailed, got %v", err)
	}
}

type recordingExecer struct {
	sql  []string
	args [][]any
	err  error
}

func (r *recordingExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestSaveRunBuildsUpsert(t *testing.T) {
	t.Parallel()

	db := &recordingExecer{}
	repo := NewPostgresRunRepository(db)
	summary := domain.RunSummary{
		RunID:              "run-1",
		SourceURL:          "https://example.com",
		TotalAnnouncements: 3,
		Failures:           []domain.FailureRecord{{Stage: domain.StageResearch, ServiceName: "Service X", Cause: "503"}},
	}
	if err := repo.SaveRun(context.Background(), summary); err != nil {
		t.Fatalf("save run: %v", err)
	}

	if len(db.sql) != 1 {
		t.Fatalf("expected one statement, got %d", len(db.sql))
	}
	query := db.sql[0]
	if !strings.HasPrefix(query, "INSERT INTO run_history") || !strings.Contains(query, "$13") || !strings.Contains(query, "ON CONFLICT (run_id)") {
		t.Fatalf("unexpected query: %s", query)
	}
	args := db.args[0]
	if len(args) != 13 || args[0] != "run-1" || args[4] != 3 {
		t.Fatalf("unexpected args: %v", args)
	}
	if !strings.Contains(args[11].(string), `"stage":"research"`) {
		t.Fatalf("failures not encoded: %v", args[11])
	}
}

func TestSaveRunWrapsExecError(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRunRepository(&recordingExecer{err: errors.New("connection refused")})
	if err := repo.SaveRun(context.Background(), domain.RunSummary{RunID: "r"}); err == nil || !strings.Contains(err.Error(), "upsert run") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNilRepositoryIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRunRepository(nil)
	if err := repo.SaveRun(context.Background(), domain.RunSummary{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
