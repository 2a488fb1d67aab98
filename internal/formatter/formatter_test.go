package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/vidx/internal/models"
	"github.com/desertthunder/vidx/internal/shared"
	th "github.com/desertthunder/vidx/internal/testing"
)

func sampleJobs() []*models.Job {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	completed := started.Add(1500 * time.Millisecond)

	ok := models.RestoreJob("id-2", 2, "batch", "https://example.com/a.mp4", 2, models.JobSucceeded,
		"http://localhost:3001/public/processed/x.mp4", "", 1500, started, &completed, started, completed, nil)
	ok.SetSteps([]models.JobStep{{Position: 0, Kind: "trim", ElapsedMs: 700}, {Position: 1, Kind: "crop", ElapsedMs: 800}})

	failed := models.RestoreJob("id-1", 1, "crop", "https://example.com/b.mp4", 1, models.JobFailed,
		"", "Failed to process video: transcode failed, bad crop", 20, started, &completed, started, completed, nil)

	return []*models.Job{ok, failed}
}

func TestJobFormatters(t *testing.T) {
	t.Run("JobsToCSV", func(t *testing.T) {
		data, err := JobsToCSV(sampleJobs())
		if err != nil {
			t.Fatalf("JobsToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Sequence,ID,Operation,Status,Operations,Source,Output,Error,ProcessingTimeMs,StartedAt") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "2,id-2,batch,succeeded,2,https://example.com/a.mp4") {
			t.Errorf("CSV missing first job, got: %s", output)
		}
		if !strings.Contains(output, `"Failed to process video: transcode failed, bad crop"`) {
			t.Errorf("CSV should quote errors containing commas, got: %s", output)
		}
		if !strings.Contains(output, "2025-03-01T12:00:00Z") {
			t.Errorf("CSV missing start time")
		}
	})

	t.Run("JobsToText", func(t *testing.T) {
		data, err := JobsToText(sampleJobs())
		if err != nil {
			t.Fatalf("JobsToText failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if !strings.HasPrefix(lines[0], "#2") || !strings.Contains(lines[0], "succeeded") || !strings.Contains(lines[0], "1.50s") {
			t.Errorf("unexpected first line %q", lines[0])
		}
	})

	t.Run("JobsToText Empty", func(t *testing.T) {
		data, _ := JobsToText(nil)
		if string(data) != "No jobs found\n" {
			t.Errorf("unexpected output %q", data)
		}
	})

	t.Run("JobToText", func(t *testing.T) {
		output := string(JobToText(sampleJobs()[0]))

		for _, want := range []string{"Job #2 (id-2)", "Operation: batch (2 step(s))", "Output: http://localhost:3001/public/processed/x.mp4", "1. trim [0.70s]", "2. crop [0.80s]"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
		if strings.Contains(output, "Error:") {
			t.Error("successful job should not print an error line")
		}
	})

	t.Run("FormatJobs JSON", func(t *testing.T) {
		data, err := FormatJobs(sampleJobs(), "json")
		if err != nil {
			t.Fatalf("FormatJobs failed: %v", err)
		}

		var views []JobView
		if err := json.Unmarshal(data, &views); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(views) != 2 || views[0].OutputRef == "" || len(views[0].Steps) != 2 {
			t.Errorf("unexpected views %+v", views)
		}
		if views[1].Error == "" || views[1].Status != "failed" {
			t.Errorf("unexpected failed view %+v", views[1])
		}
	})

	t.Run("FormatJobs Unknown", func(t *testing.T) {
		if _, err := FormatJobs(nil, "yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestManifest(t *testing.T) {
	entries := []ManifestEntry{
		{Source: "a.mp4", Success: true, VideoURL: "http://x/processed/a.mp4", ProcessingTimeMs: 10},
		{Source: "b.mp4", Error: "Failed to download video: fetch failed"},
	}

	t.Run("WriteManifest JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "manifest.json")
		if err := WriteManifest(entries, "json", path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}

		th.AssertFileExists(t, path)
		var decoded []ManifestEntry
		if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 || !decoded[0].Success || decoded[1].Error == "" {
			t.Errorf("unexpected manifest %+v", decoded)
		}
	})

	t.Run("WriteManifest CSV", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.csv")
		if err := WriteManifest(entries, "csv", path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}

		content := th.MustReadFile(t, path)
		if !strings.HasPrefix(content, "Source,Success,VideoURL,Error,ProcessingTimeMs") {
			t.Errorf("CSV missing headers: %s", content)
		}
		if !strings.Contains(content, "b.mp4,false,,Failed to download video: fetch failed,0") {
			t.Errorf("CSV missing failed entry: %s", content)
		}
	})

	t.Run("WriteManifest Default Path", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		if err := WriteManifest(entries, "", "manifest.json"); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}
		th.AssertFileExists(t, filepath.Join(tempDir, "manifest.json"))
	})

	t.Run("WriteManifest Unknown Format", func(t *testing.T) {
		err := WriteManifest(entries, "xml", filepath.Join(t.TempDir(), "m"))
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("WriteManifest Unwritable", func(t *testing.T) {
		dir := t.TempDir()
		if err := WriteManifest(entries, "json", dir); err == nil {
			t.Error("expected error writing to a directory path")
		}
	})
}
