package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/opryamko/hr-assistant/internal/core/domain"
)

// BuildJournal records index build lifecycle rows. Purely operational:
// the retrieval path never depends on it.
type BuildJournal struct {
	db *sql.DB
}

func NewBuildJournal(db *sql.DB) *BuildJournal {
	return &BuildJournal{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (j *BuildJournal) EnsureSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS index_builds (
	id TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	status TEXT NOT NULL,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_index_builds_collection_started_at ON index_builds(collection, started_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (j *BuildJournal) RecordBuildStarted(ctx context.Context, build *domain.IndexBuild) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO index_builds (id, collection, status, chunk_count, error_message, started_at)
VALUES ($1,$2,$3,$4,$5,$6)
`,
		build.ID, build.Collection, string(build.Status), build.ChunkCount, build.Error, build.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert index build: %w", err)
	}
	return nil
}

func (j *BuildJournal) RecordBuildFinished(ctx context.Context, buildID string, chunkCount int, buildErr error) error {
	status := domain.BuildSucceeded
	errMessage := ""
	if buildErr != nil {
		status = domain.BuildFailed
		errMessage = buildErr.Error()
	}

	result, err := j.db.ExecContext(ctx, `
UPDATE index_builds
SET status = $2, chunk_count = $3, error_message = $4, finished_at = $5
WHERE id = $1
`, buildID, string(status), chunkCount, errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update index build: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrBuildNotFound, "finish index build", fmt.Errorf("id=%s", buildID))
	}
	return nil
}

func (j *BuildJournal) LatestBuild(ctx context.Context, collection string) (*domain.IndexBuild, error) {
	row := j.db.QueryRowContext(ctx, `
SELECT id, collection, status, chunk_count, error_message, started_at, finished_at
FROM index_builds
WHERE collection = $1
ORDER BY started_at DESC
LIMIT 1
`, collection)

	var build domain.IndexBuild
	var status string
	var errMessage sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(&build.ID, &build.Collection, &status, &build.ChunkCount, &errMessage, &build.StartedAt, &finishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBuildNotFound, "latest index build", fmt.Errorf("collection=%s", collection))
		}
		return nil, fmt.Errorf("scan index build: %w", err)
	}

	build.Status = domain.BuildStatus(status)
	build.Error = errMessage.String
	if finishedAt.Valid {
		t := finishedAt.Time
		build.FinishedAt = &t
	}
	return &build, nil
}
