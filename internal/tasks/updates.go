package tasks

import (
	"fmt"

	"github.com/desertthunder/vidx/internal/pipeline"
	"github.com/desertthunder/vidx/internal/shared"
)

// ProgressUpdate represents a progress event during a request.
//
// Used to send stage updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Request stage
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Request stage enumeration
type Phase int

const (
	FetchSource Phase = iota
	Transform
	Publish
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case Transform:
		return "transform"
	case Publish:
		return "publish"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchingSourceUpdate(ref string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s...", ref),
	}
}

func transformStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Transform,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Applying %d operation(s)...", total),
	}
}

func stepCompletedUpdate(r pipeline.StepReport, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Transform,
		Step:    r.Position + 1,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", r.Position+1, total, r.Kind, shared.FormatMillis(uint64(r.Elapsed.Milliseconds()))),
		Data:    r,
	}
}

func publishingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Publish,
		Step:    1,
		Total:   1,
		Message: "Publishing result...",
	}
}

func doneUpdate(resp *Response) ProgressUpdate {
	msg := fmt.Sprintf("✓ %s", resp.VideoURL)
	if !resp.Success {
		msg = fmt.Sprintf("✗ %s", resp.Error)
	}
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    resp,
	}
}

func bulkItemUpdate(step, total int, ref string, resp *Response) ProgressUpdate {
	mark := "✓"
	if !resp.Success {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   Done,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, ref),
		Data:    resp,
	}
}
