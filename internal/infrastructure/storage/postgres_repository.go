package storage

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
)

const runHistoryTable = "run_history"

const createRunHistory = `CREATE TABLE IF NOT EXISTS run_history (
    run_id           TEXT PRIMARY KEY,
    source_url       TEXT NOT NULL,
    started_at       TIMESTAMPTZ NOT NULL,
    finished_at      TIMESTAMPTZ NOT NULL,
    total            INTEGER NOT NULL,
    researched       INTEGER NOT NULL,
    degraded         INTEGER NOT NULL,
    captures         INTEGER NOT NULL,
    artifacts        INTEGER NOT NULL,
    used_sample_data BOOLEAN NOT NULL,
    partial          BOOLEAN NOT NULL,
    failures         JSONB NOT NULL,
    document_ref     TEXT NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Execer is the slice of pgxpool.Pool the repository needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRunRepository records run summaries into Postgres.
type PostgresRunRepository struct {
	db Execer
	sb sq.StatementBuilderType
}

var _ ports.RunRepository = (*PostgresRunRepository)(nil)

// NewPostgresRunRepository wires a pgx pool (or any Execer).
func NewPostgresRunRepository(db Execer) *PostgresRunRepository {
	return &PostgresRunRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the run history table when missing.
func (r *PostgresRunRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.Exec(ctx, createRunHistory); err != nil {
		return fmt.Errorf("create run history: %w", err)
	}
	return nil
}

// SaveRun upserts the run summary.
func (r *PostgresRunRepository) SaveRun(ctx context.Context, summary domain.RunSummary) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.insertRun(summary)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	return nil
}

func (r *PostgresRunRepository) insertRun(summary domain.RunSummary) (string, []any, error) {
	failures := summary.Failures
	if failures == nil {
		failures = []domain.FailureRecord{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return "", nil, fmt.Errorf("marshal failures: %w", err)
	}

	query, args, err := r.sb.
		Insert(runHistoryTable).
		Columns(
			"run_id", "source_url", "started_at", "finished_at",
			"total", "researched", "degraded", "captures", "artifacts",
			"used_sample_data", "partial", "failures", "document_ref",
		).
		Values(
			summary.RunID, summary.SourceURL, summary.StartedAt, summary.FinishedAt,
			summary.TotalAnnouncements, summary.ResearchedCount, summary.DegradedCount,
			summary.CaptureCount, summary.ArtifactCount,
			summary.UsedSampleData, summary.Partial, string(failuresJSON), summary.OutputDocumentRef,
		).
		Suffix(`ON CONFLICT (run_id) DO UPDATE
              SET finished_at = EXCLUDED.finished_at,
                  failures = EXCLUDED.failures,
                  document_ref = EXCLUDED.document_ref,
                  updated_at = NOW()`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build run insert: %w", err)
	}
	return query, args, nil
}
