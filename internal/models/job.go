package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/vidx/internal/shared"
)

// JobStatus is the lifecycle state of a [Job].
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// ParseJobStatus validates a status name.
func ParseJobStatus(s string) (JobStatus, error) {
	switch st := JobStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case JobRunning, JobSucceeded, JobFailed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown job status %q", shared.ErrInvalidInput, s)
	}
}

// JobStep is one completed pipeline step of a job.
type JobStep struct {
	Position  int    `json:"position"`
	Kind      string `json:"kind"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// JobResult is how a job ended.
type JobResult struct {
	Success          bool
	OutputRef        string
	Error            string
	ProcessingTimeMs uint64
	Steps            []JobStep
}

// Job is one processing request in the history.
type Job struct {
	id               string
	sequence         int
	operation        string
	sourceRef        string
	operationCount   int
	status           JobStatus
	outputRef        string
	errorMessage     string
	processingTimeMs uint64
	steps            []JobStep
	startedAt        time.Time
	completedAt      *time.Time
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

// NewJob creates a running job for operation applied to sourceRef.
func NewJob(operation, sourceRef string, operationCount int) *Job {
	now := time.Now().UTC()
	return &Job{
		operation:      operation,
		sourceRef:      sourceRef,
		operationCount: operationCount,
		status:         JobRunning,
		startedAt:      now,
		createdAt:      now,
		updatedAt:      now,
	}
}

// RestoreJob rebuilds a Job from stored columns.
func RestoreJob(id string, sequence int, operation, sourceRef string, operationCount int, status JobStatus,
	outputRef, errorMessage string, processingTimeMs uint64, startedAt time.Time, completedAt *time.Time,
	createdAt, updatedAt time.Time, deletedAt *time.Time) *Job {
	return &Job{
		id:               id,
		sequence:         sequence,
		operation:        operation,
		sourceRef:        sourceRef,
		operationCount:   operationCount,
		status:           status,
		outputRef:        outputRef,
		errorMessage:     errorMessage,
		processingTimeMs: processingTimeMs,
		startedAt:        startedAt,
		completedAt:      completedAt,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
		deletedAt:        deletedAt,
	}
}

func (j *Job) ID() string               { return j.id }
func (j *Job) Sequence() int            { return j.sequence }
func (j *Job) Operation() string        { return j.operation }
func (j *Job) SourceRef() string        { return j.sourceRef }
func (j *Job) OperationCount() int      { return j.operationCount }
func (j *Job) Status() JobStatus        { return j.status }
func (j *Job) OutputRef() string        { return j.outputRef }
func (j *Job) ErrorMessage() string     { return j.errorMessage }
func (j *Job) ProcessingTimeMs() uint64 { return j.processingTimeMs }
func (j *Job) Steps() []JobStep         { return j.steps }
func (j *Job) StartedAt() time.Time     { return j.startedAt }
func (j *Job) CompletedAt() *time.Time  { return j.completedAt }
func (j *Job) CreatedAt() time.Time     { return j.createdAt }
func (j *Job) UpdatedAt() time.Time     { return j.updatedAt }
func (j *Job) DeletedAt() *time.Time    { return j.deletedAt }

func (j *Job) SetID(id string)           { j.id = id }
func (j *Job) SetSequence(seq int)       { j.sequence = seq }
func (j *Job) SetSteps(steps []JobStep)  { j.steps = steps }
func (j *Job) SetUpdatedAt(t time.Time)  { j.updatedAt = t }
func (j *Job) SetDeletedAt(t *time.Time) { j.deletedAt = t }

// Complete applies result and stamps the completion time.
func (j *Job) Complete(result JobResult) {
	now := time.Now().UTC()
	if result.Success {
		j.status = JobSucceeded
		j.errorMessage = ""
	} else {
		j.status = JobFailed
		j.errorMessage = result.Error
	}
	j.outputRef = result.OutputRef
	j.processingTimeMs = result.ProcessingTimeMs
	j.steps = result.Steps
	j.completedAt = &now
	j.updatedAt = now
}

// IsFinished reports whether the job has left the running state.
func (j *Job) IsFinished() bool {
	return j.status != JobRunning
}

// Validate checks required fields and status consistency.
func (j *Job) Validate() error {
	if j.id == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(j.operation) == "" {
		return fmt.Errorf("%w: job operation is required", shared.ErrInvalidInput)
	}
	if j.operationCount < 0 {
		return fmt.Errorf("%w: operation count cannot be negative", shared.ErrInvalidInput)
	}
	if _, err := ParseJobStatus(string(j.status)); err != nil {
		return err
	}
	if j.status == JobFailed && j.errorMessage == "" {
		return fmt.Errorf("%w: failed job requires an error message", shared.ErrInvalidInput)
	}
	if j.status == JobSucceeded && j.outputRef == "" {
		return fmt.Errorf("%w: succeeded job requires an output reference", shared.ErrInvalidInput)
	}
	return nil
}
