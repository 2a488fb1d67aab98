package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/vidx/internal/models"
	"github.com/desertthunder/vidx/internal/shared"
)

// JobRepository implements models.Repository[*models.Job] for the request history.
//
// Handles job CRUD operations with soft delete support, status-based queries and per-step timings.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository with the given database connection
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `
	id, sequence, operation, source_ref, operation_count, status, output_ref,
	error_message, processing_time_ms, started_at, completed_at, created_at,
	updated_at, deleted_at
`

// Create inserts a new job into the database with generated ID and sequence
func (r *JobRepository) Create(job *models.Job) error {
	sequence, err := NextSequence(r.db, "jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	job.SetID(id)
	job.SetSequence(sequence)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		id,
		sequence,
		job.Operation(),
		job.SourceRef(),
		job.OperationCount(),
		string(job.Status()),
		nullString(job.OutputRef()),
		nullString(job.ErrorMessage()),
		int64(job.ProcessingTimeMs()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return r.saveSteps(id, job.Steps())
}

// Get retrieves a job and its steps by ID, excluding soft-deleted jobs
func (r *JobRepository) Get(id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ? AND deleted_at IS NULL`

	job, err := scanJob(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	steps, err := r.loadSteps(id)
	if err != nil {
		return nil, err
	}
	job.SetSteps(steps)
	return job, nil
}

// Update writes a job's mutable fields and replaces its steps
func (r *JobRepository) Update(job *models.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	job.SetUpdatedAt(now)

	query := `
		UPDATE jobs
		SET status = ?, output_ref = ?, error_message = ?, processing_time_ms = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(job.Status()),
		nullString(job.OutputRef()),
		nullString(job.ErrorMessage()),
		int64(job.ProcessingTimeMs()),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: job not found or already deleted: %s", shared.ErrNotFound, job.ID())
	}

	return r.saveSteps(job.ID(), job.Steps())
}

// Delete soft-deletes a job by ID
func (r *JobRepository) Delete(id string) error {
	query := `UPDATE jobs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: job not found or already deleted: %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves jobs matching the given criteria, newest first, excluding soft-deleted jobs.
//
// Supported criteria: "status" and "operation" (strings), "limit" (int). Steps are not loaded.
func (r *JobRepository) List(criteria map[string]any) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE deleted_at IS NULL`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if operation, ok := criteria["operation"].(string); ok && operation != "" {
		query += " AND operation = ?"
		args = append(args, operation)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

func (r *JobRepository) saveSteps(jobID string, steps []models.JobStep) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM job_steps WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("failed to clear job steps: %w", err)
	}

	for _, s := range steps {
		_, err := tx.Exec(`INSERT INTO job_steps (job_id, position, kind, elapsed_ms) VALUES (?, ?, ?, ?)`,
			jobID, s.Position, s.Kind, s.ElapsedMs)
		if err != nil {
			return fmt.Errorf("failed to insert job step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job steps: %w", err)
	}
	return nil
}

func (r *JobRepository) loadSteps(jobID string) ([]models.JobStep, error) {
	rows, err := r.db.Query(`SELECT position, kind, elapsed_ms FROM job_steps WHERE job_id = ? ORDER BY position`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query job steps: %w", err)
	}
	defer rows.Close()

	var steps []models.JobStep
	for rows.Next() {
		var s models.JobStep
		if err := rows.Scan(&s.Position, &s.Kind, &s.ElapsedMs); err != nil {
			return nil, fmt.Errorf("failed to scan job step: %w", err)
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

// rowScanner is satisfied by [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		id               string
		sequence         int
		operation        string
		sourceRef        string
		operationCount   int
		status           string
		outputRef        sql.NullString
		errorMessage     sql.NullString
		processingTimeMs int64
		startedAt        sql.NullTime
		completedAt      sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &operation, &sourceRef, &operationCount, &status, &outputRef,
		&errorMessage, &processingTimeMs, &startedAt, &completedAt, &createdAt,
		&updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	return models.RestoreJob(
		id, sequence, operation, sourceRef, operationCount, models.JobStatus(status),
		outputRef.String, errorMessage.String, uint64(max(processingTimeMs, 0)),
		startedAt.Time, nullTime(completedAt), createdAt, updatedAt, nullTime(deletedAt),
	), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
