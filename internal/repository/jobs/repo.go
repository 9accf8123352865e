// Package jobs persists re-indexing sweep runs in Postgres.
package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/souqlane/stylesearch/internal/domain"
)

// Repo implements the index-job repository over Postgres.
type Repo struct {
	db *sql.DB
}

// New creates an index-job repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a running job with a known product total.
func (r *Repo) Create(ctx context.Context, total int) (domain.IndexJob, error) {
	job := domain.IndexJob{
		ID:            uuid.NewString(),
		Status:        domain.JobStatusRunning,
		ProductsTotal: total,
		StartedAt:     time.Now().UTC(),
	}

	query := `INSERT INTO index_jobs (id, status, products_total, products_processed, failures, started_at)
	          VALUES ($1, $2, $3, 0, 0, $4)`
	if _, err := r.db.ExecContext(ctx, query,
		job.ID, job.Status, job.ProductsTotal, job.StartedAt,
	); err != nil {
		return domain.IndexJob{}, fmt.Errorf("create index job: %w", err)
	}
	return job, nil
}

// IncrementProcessed bumps the processed counter by one.
func (r *Repo) IncrementProcessed(ctx context.Context, id string) error {
	query := `UPDATE index_jobs SET products_processed = products_processed + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment processed %s: %w", id, err)
	}
	return nil
}

// IncrementFailed bumps the failure counter. Processed and failed are
// exclusive, so processed + failures never exceeds the job total.
func (r *Repo) IncrementFailed(ctx context.Context, id string) error {
	query := `UPDATE index_jobs SET failures = failures + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment failed %s: %w", id, err)
	}
	return nil
}

// Complete marks the job completed and stamps completed_at.
func (r *Repo) Complete(ctx context.Context, id string) error {
	query := `UPDATE index_jobs SET status = $1, completed_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, domain.JobStatusCompleted, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("complete index job %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Latest returns the most recently started job.
func (r *Repo) Latest(ctx context.Context) (domain.IndexJob, error) {
	query := `SELECT id, status, products_total, products_processed, failures, started_at, completed_at
	          FROM index_jobs
	          ORDER BY started_at DESC
	          LIMIT 1`

	var job domain.IndexJob
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query).Scan(
		&job.ID, &job.Status, &job.ProductsTotal, &job.ProductsProcessed,
		&job.Failures, &job.StartedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IndexJob{}, domain.ErrNoJobs
		}
		return domain.IndexJob{}, fmt.Errorf("latest index job: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return job, nil
}

// Running reports whether a sweep is currently in progress.
func (r *Repo) Running(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM index_jobs WHERE status = $1)`

	var running bool
	if err := r.db.QueryRowContext(ctx, query, domain.JobStatusRunning).Scan(&running); err != nil {
		return false, fmt.Errorf("check running job: %w", err)
	}
	return running, nil
}
