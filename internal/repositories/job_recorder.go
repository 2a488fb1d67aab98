package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidx/internal/models"
)

// JobRecorderAdapter implements tasks.JobRecorder using JobRepository.
//
// A request is inserted as running when it starts and updated with its result and step
// timings when it finishes.
type JobRecorderAdapter struct {
	repo *JobRepository
}

// NewJobRecorderAdapter creates a new JobRecorderAdapter with the given repository
func NewJobRecorderAdapter(repo *JobRepository) *JobRecorderAdapter {
	return &JobRecorderAdapter{repo: repo}
}

// RecordStart inserts a running job and returns its ID.
func (a *JobRecorderAdapter) RecordStart(ctx context.Context, operation, sourceRef string, operationCount int) (string, error) {
	job := models.NewJob(operation, sourceRef, operationCount)
	if err := a.repo.Create(job); err != nil {
		return "", fmt.Errorf("failed to record job: %w", err)
	}
	return job.ID(), nil
}

// RecordFinish completes the job with result.
func (a *JobRecorderAdapter) RecordFinish(ctx context.Context, id string, result models.JobResult) error {
	job, err := a.repo.Get(id)
	if err != nil {
		return err
	}
	job.Complete(result)
	if err := a.repo.Update(job); err != nil {
		return fmt.Errorf("failed to record job result: %w", err)
	}
	return nil
}
