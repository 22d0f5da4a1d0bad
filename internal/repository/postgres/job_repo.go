package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"paperbridge/internal/domain"
	"paperbridge/internal/port"
)

type jobRepo struct {
	db *sqlx.DB
}

// NewJobRepo creates a new PostgreSQL-backed JobRepository.
func NewJobRepo(db *sqlx.DB) port.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) CreateQueued(ctx context.Context, job *domain.Job) error {
	now := time.Now().UTC()
	job.Status = domain.JobStatusQueued
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.TaskMetadata == nil {
		job.TaskMetadata = []byte("{}")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (
			id, document_id, task_type, status, error_message, task_metadata,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.DocumentID, job.TaskType, job.Status, job.ErrorMessage,
		job.TaskMetadata, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		// The partial unique index on active (document, task type) pairs is
		// the sole concurrency-control primitive for duplicate triggers.
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "uq_jobs_active") {
			return domain.ErrJobAlreadyActive
		}
		return fmt.Errorf("jobRepo.CreateQueued: %w", err)
	}
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.GetContext(ctx, &job, "SELECT * FROM jobs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	return &job, nil
}

// ClaimQueued flips up to limit queued jobs to processing in one statement.
// The processing status is durable before any external call runs, so a crash
// mid-job is observable rather than silently retried.
func (r *jobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.SelectContext(ctx, &jobs,
		`UPDATE jobs SET status = $1, updated_at = $2
		 WHERE id IN (
			SELECT id FROM jobs WHERE status = $3
			ORDER BY created_at ASC LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.JobStatusProcessing, time.Now().UTC(), domain.JobStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.ClaimQueued: %w", err)
	}
	return jobs, nil
}

func (r *jobRepo) Finish(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = time.Now().UTC()
	if job.TaskMetadata == nil {
		job.TaskMetadata = []byte("{}")
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = $1, error_message = $2, task_metadata = $3, updated_at = $4
		 WHERE id = $5`,
		job.Status, job.ErrorMessage, job.TaskMetadata, job.UpdatedAt, job.ID)
	if err != nil {
		return fmt.Errorf("jobRepo.Finish: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *jobRepo) UpdateMetadata(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET task_metadata = $1, updated_at = $2 WHERE id = $3",
		job.TaskMetadata, job.UpdatedAt, job.ID)
	if err != nil {
		return fmt.Errorf("jobRepo.UpdateMetadata: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}
