package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/vidx/internal/formatter"
	"github.com/desertthunder/vidx/internal/operations"
	"golang.org/x/time/rate"
)

// BulkOpts configures [Processor.BulkBatch].
type BulkOpts struct {
	NumWorkers     int     // Concurrent pipelines (default: 2, max: 8)
	RateLimit      float64 // Sources started per second (default: 2)
	ManifestPath   string  // Optional manifest output
	ManifestFormat string  // json (default) or csv
}

// BulkEntry is the outcome for one source.
type BulkEntry struct {
	Source   string    `json:"source"`
	Response *Response `json:"response"`
}

// BulkResult summarizes a bulk run. Entries are in input order.
type BulkResult struct {
	Total        int         `json:"total"`
	Succeeded    int         `json:"succeeded"`
	Failed       int         `json:"failed"`
	Entries      []BulkEntry `json:"entries"`
	ManifestPath string      `json:"manifest_path,omitempty"`
}

type bulkJob struct {
	index int
	ref   string
}

// BulkBatch applies the same operation list to every source in refs.
//
// Sources are started at most opts.RateLimit per second and processed by a fixed worker pool.
// Each source is an independent batch request with its own workspace; one failing source does
// not affect the others. Cancelling ctx stops dispatching and returns what finished.
func (p *Processor) BulkBatch(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	refs []string,
	ops []operations.Operation,
	opts BulkOpts,
) (*BulkResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan bulkJob, len(refs))
	responses := make([]*Response, len(refs))
	done := make(chan int, len(refs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				responses[job.index] = p.Batch(ctx, BatchRequest{VideoURL: job.ref, Operations: ops}, nil)
				done <- job.index
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, ref := range refs {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- bulkJob{index: i, ref: ref}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	result := &BulkResult{Total: len(refs)}
	completed := 0
	for idx := range done {
		completed++
		resp := responses[idx]
		if resp.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
		p.sendProgress(prog, bulkItemUpdate(completed, len(refs), refs[idx], resp))
	}

	manifest := make([]formatter.ManifestEntry, 0, completed)
	for i, resp := range responses {
		if resp == nil {
			continue
		}
		result.Entries = append(result.Entries, BulkEntry{Source: refs[i], Response: resp})
		manifest = append(manifest, formatter.ManifestEntry{
			Source:           refs[i],
			Success:          resp.Success,
			VideoURL:         resp.VideoURL,
			Error:            resp.Error,
			ProcessingTimeMs: resp.ProcessingTimeMs,
		})
	}

	if opts.ManifestPath != "" {
		if err := formatter.WriteManifest(manifest, opts.ManifestFormat, opts.ManifestPath); err != nil {
			return result, fmt.Errorf("bulk run completed but failed to write manifest: %w", err)
		}
		result.ManifestPath = opts.ManifestPath
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
