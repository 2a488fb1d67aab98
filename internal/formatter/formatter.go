// package formatter renders job history and bulk manifests as CSV, JSON or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/vidx/internal/models"
	"github.com/desertthunder/vidx/internal/shared"
)

// Output formats accepted by [FormatJobs] and [WriteManifest].
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// JobView is the serialized form of a [models.Job], shared by the CLI and the HTTP API.
type JobView struct {
	ID               string           `json:"id"`
	Sequence         int              `json:"sequence"`
	Operation        string           `json:"operation"`
	SourceRef        string           `json:"source"`
	OperationCount   int              `json:"operation_count"`
	Status           string           `json:"status"`
	OutputRef        string           `json:"video_url,omitempty"`
	Error            string           `json:"error,omitempty"`
	ProcessingTimeMs uint64           `json:"processing_time_ms"`
	Steps            []models.JobStep `json:"steps,omitempty"`
	StartedAt        time.Time        `json:"started_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}

// ToJobView converts a job for serialization.
func ToJobView(j *models.Job) JobView {
	return JobView{
		ID:               j.ID(),
		Sequence:         j.Sequence(),
		Operation:        j.Operation(),
		SourceRef:        j.SourceRef(),
		OperationCount:   j.OperationCount(),
		Status:           string(j.Status()),
		OutputRef:        j.OutputRef(),
		Error:            j.ErrorMessage(),
		ProcessingTimeMs: j.ProcessingTimeMs(),
		Steps:            j.Steps(),
		StartedAt:        j.StartedAt(),
		CompletedAt:      j.CompletedAt(),
	}
}

// ToJobViews converts a job list for serialization.
func ToJobViews(jobs []*models.Job) []JobView {
	views := make([]JobView, len(jobs))
	for i, j := range jobs {
		views[i] = ToJobView(j)
	}
	return views
}

// FormatJobs renders jobs in the named format.
func FormatJobs(jobs []*models.Job, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return JobsToCSV(jobs)
	case FormatJSON:
		return shared.MarshalJSON(ToJobViews(jobs), true)
	case FormatText, "":
		return JobsToText(jobs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// JobsToCSV converts jobs to CSV with columns: Sequence, ID, Operation, Status, Operations, Source, Output, Error, ProcessingTimeMs, StartedAt
func JobsToCSV(jobs []*models.Job) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "ID", "Operation", "Status", "Operations", "Source", "Output", "Error", "ProcessingTimeMs", "StartedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, j := range jobs {
		record := []string{
			strconv.Itoa(j.Sequence()),
			j.ID(),
			j.Operation(),
			string(j.Status()),
			strconv.Itoa(j.OperationCount()),
			j.SourceRef(),
			j.OutputRef(),
			j.ErrorMessage(),
			strconv.FormatUint(j.ProcessingTimeMs(), 10),
			j.StartedAt().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// JobsToText converts jobs to one line each: number, status, operation, duration, source.
func JobsToText(jobs []*models.Job) ([]byte, error) {
	var buf bytes.Buffer

	if len(jobs) == 0 {
		buf.WriteString("No jobs found\n")
		return buf.Bytes(), nil
	}

	for _, j := range jobs {
		buf.WriteString(fmt.Sprintf("#%-4d %-9s %-18s %8s  %s\n",
			j.Sequence(), j.Status(), j.Operation(), shared.FormatMillis(j.ProcessingTimeMs()), j.SourceRef()))
	}

	return buf.Bytes(), nil
}

// JobToText renders one job with its steps.
func JobToText(j *models.Job) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Job #%d (%s)\n", j.Sequence(), j.ID()))
	buf.WriteString(fmt.Sprintf("Operation: %s (%d step(s))\n", j.Operation(), j.OperationCount()))
	buf.WriteString(fmt.Sprintf("Status: %s\n", j.Status()))
	buf.WriteString(fmt.Sprintf("Source: %s\n", j.SourceRef()))
	if j.OutputRef() != "" {
		buf.WriteString(fmt.Sprintf("Output: %s\n", j.OutputRef()))
	}
	if j.ErrorMessage() != "" {
		buf.WriteString(fmt.Sprintf("Error: %s\n", j.ErrorMessage()))
	}
	buf.WriteString(fmt.Sprintf("Started: %s\n", j.StartedAt().Format(time.RFC3339)))
	if c := j.CompletedAt(); c != nil {
		buf.WriteString(fmt.Sprintf("Completed: %s (%s)\n", c.Format(time.RFC3339), shared.FormatMillis(j.ProcessingTimeMs())))
	}

	if steps := j.Steps(); len(steps) > 0 {
		buf.WriteString("\nSteps:\n")
		for _, s := range steps {
			buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", s.Position+1, s.Kind, shared.FormatMillis(uint64(max(s.ElapsedMs, 0)))))
		}
	}

	return buf.Bytes()
}

// ManifestEntry is one source of a bulk run.
type ManifestEntry struct {
	Source           string `json:"source"`
	Success          bool   `json:"success"`
	VideoURL         string `json:"video_url,omitempty"`
	Error            string `json:"error,omitempty"`
	ProcessingTimeMs uint64 `json:"processing_time_ms"`
}

// ManifestToCSV converts manifest entries to CSV with columns: Source, Success, VideoURL, Error, ProcessingTimeMs
func ManifestToCSV(entries []ManifestEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Source", "Success", "VideoURL", "Error", "ProcessingTimeMs"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, e := range entries {
		record := []string{e.Source, strconv.FormatBool(e.Success), e.VideoURL, e.Error, strconv.FormatUint(e.ProcessingTimeMs, 10)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteManifest writes entries to path as JSON (default) or CSV, creating parent directories.
func WriteManifest(entries []ManifestEntry, format, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case FormatCSV:
		data, err = ManifestToCSV(entries)
	case FormatJSON, "":
		data, err = shared.MarshalJSON(entries, true)
	default:
		return fmt.Errorf("%w: unknown manifest format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
