package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/models"
	"github.com/desertthunder/vidx/internal/operations"
	"github.com/desertthunder/vidx/internal/pipeline"
	"github.com/desertthunder/vidx/internal/services"
	"github.com/desertthunder/vidx/internal/shared"
	"github.com/desertthunder/vidx/internal/workspace"
)

// BatchLabel is the operation label reported for batch requests.
const BatchLabel = "batch"

// Stage prefixes of failure messages.
const (
	prefixFetch   = "Failed to download video: "
	prefixProcess = "Failed to process video: "
	prefixBatch   = "Failed to process batch operations: "
	prefixPublish = "Failed to upload result: "
)

// ProcessRequest asks for a single operation.
type ProcessRequest struct {
	VideoURL   string            `json:"video_url"`
	Operation  string            `json:"operation"`
	Parameters operations.Params `json:"parameters"`
}

// BatchRequest asks for an ordered list of operations.
type BatchRequest struct {
	VideoURL   string                 `json:"video_url"`
	Operations []operations.Operation `json:"operations"`
}

// Response is the outcome of a request.
type Response struct {
	Success          bool   `json:"success"`
	VideoURL         string `json:"video_url,omitempty"`
	Error            string `json:"error,omitempty"`
	ProcessingTimeMs uint64 `json:"processing_time_ms"`
	Operation        string `json:"operation"`
}

// Engine defines the processing operations.
type Engine interface {
	// Process applies one operation to the source.
	Process(ctx context.Context, req ProcessRequest, progress chan<- ProgressUpdate) *Response

	// Batch applies req.Operations in ascending order.
	Batch(ctx context.Context, req BatchRequest, progress chan<- ProgressUpdate) *Response
}

// JobRecorder persists request history.
type JobRecorder interface {
	RecordStart(ctx context.Context, operation, sourceRef string, operationCount int) (string, error)
	RecordFinish(ctx context.Context, id string, result models.JobResult) error
}

// Options configures a [Processor].
type Options struct {
	WorkDir   string // Parent of per-request workspaces; empty means the OS temp dir
	Extension string // Extension of intermediate files
	Recorder  JobRecorder
	Logger    *log.Logger
}

// Processor implements [Engine].
type Processor struct {
	fetcher   services.SourceProvider
	publisher services.Publisher
	sequencer *pipeline.Sequencer
	recorder  JobRecorder
	workDir   string
	ext       string
	logger    *log.Logger
}

// NewProcessor creates a Processor running steps with transcoder.
func NewProcessor(fetcher services.SourceProvider, publisher services.Publisher, transcoder pipeline.Transcoder, opts Options) *Processor {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Processor{
		fetcher:   fetcher,
		publisher: publisher,
		sequencer: pipeline.NewSequencer(transcoder, opts.Logger),
		recorder:  opts.Recorder,
		workDir:   opts.WorkDir,
		ext:       opts.Extension,
		logger:    shared.WithLogger(opts.Logger, "component", "processor"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (p *Processor) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Process applies req.Operation to req.VideoURL.
func (p *Processor) Process(ctx context.Context, req ProcessRequest, progress chan<- ProgressUpdate) *Response {
	ops := []operations.Operation{{Kind: req.Operation, Parameters: req.Parameters}}
	return p.run(ctx, req.Operation, false, req.VideoURL, ops, progress)
}

// Batch applies req.Operations to req.VideoURL.
func (p *Processor) Batch(ctx context.Context, req BatchRequest, progress chan<- ProgressUpdate) *Response {
	return p.run(ctx, BatchLabel, true, req.VideoURL, req.Operations, progress)
}

func (p *Processor) run(ctx context.Context, label string, batch bool, ref string, ops []operations.Operation, progress chan<- ProgressUpdate) *Response {
	start := time.Now()
	logger := shared.WithLogger(p.logger, "operation", label)
	logger.Info("processing video", "source", ref, "operations", len(ops))

	jobID := p.recordStart(ctx, label, ref, len(ops))
	var steps []models.JobStep

	finish := func(url string, err error) *Response {
		resp := &Response{
			Success:          err == nil,
			VideoURL:         url,
			ProcessingTimeMs: uint64(time.Since(start).Milliseconds()),
			Operation:        label,
		}
		if err != nil {
			resp.Error = err.Error()
			logger.Error("processing failed", "err", resp.Error, "elapsed_ms", resp.ProcessingTimeMs)
		} else {
			logger.Info("processing completed", "elapsed_ms", resp.ProcessingTimeMs)
		}

		p.recordFinish(ctx, jobID, resp, steps)
		p.sendProgress(progress, doneUpdate(resp))
		return resp
	}

	if strings.TrimSpace(ref) == "" {
		return finish("", fmt.Errorf("%s%w: video_url is required", prefixFetch, shared.ErrMissingArgument))
	}

	if err := pipeline.Validate(ops); err != nil {
		return finish("", pipelineError(batch, err))
	}

	area, err := workspace.New(workspace.Options{BaseDir: p.workDir, Extension: p.ext, Logger: p.logger})
	if err != nil {
		return finish("", err)
	}
	defer area.Close()

	input, err := area.NextInputPath(services.SourceExtension(ref))
	if err != nil {
		return finish("", err)
	}

	p.sendProgress(progress, fetchingSourceUpdate(ref))
	if err := p.fetcher.Fetch(ctx, ref, input); err != nil {
		return finish("", fmt.Errorf("%s%w", prefixFetch, err))
	}

	p.sendProgress(progress, transformStartUpdate(len(ops)))
	seq := p.sequencer.WithObserver(func(r pipeline.StepReport) {
		steps = append(steps, models.JobStep{Position: r.Position, Kind: string(r.Kind), ElapsedMs: r.Elapsed.Milliseconds()})
		p.sendProgress(progress, stepCompletedUpdate(r, len(ops)))
	})

	outcome, err := seq.Run(ctx, area, input, ops)
	if err != nil {
		return finish("", pipelineError(batch, err))
	}

	p.sendProgress(progress, publishingUpdate())
	url, err := p.publisher.Publish(ctx, outcome.Output)
	if err != nil {
		return finish("", fmt.Errorf("%s%w", prefixPublish, err))
	}

	return finish(url, nil)
}

// pipelineError prefixes a sequencer failure. Single requests drop the step position.
func pipelineError(batch bool, err error) error {
	if batch {
		return fmt.Errorf("%s%w", prefixBatch, err)
	}
	var serr *pipeline.StepError
	if errors.As(err, &serr) {
		err = serr.Err
	}
	return fmt.Errorf("%s%w", prefixProcess, err)
}

func (p *Processor) recordStart(ctx context.Context, label, ref string, count int) string {
	if p.recorder == nil {
		return ""
	}
	id, err := p.recorder.RecordStart(ctx, label, ref, count)
	if err != nil {
		p.logger.Warn("failed to record job start", "err", err)
		return ""
	}
	return id
}

func (p *Processor) recordFinish(ctx context.Context, id string, resp *Response, steps []models.JobStep) {
	if p.recorder == nil || id == "" {
		return
	}
	result := models.JobResult{
		Success:          resp.Success,
		OutputRef:        resp.VideoURL,
		Error:            resp.Error,
		ProcessingTimeMs: resp.ProcessingTimeMs,
		Steps:            steps,
	}
	if err := p.recorder.RecordFinish(context.WithoutCancel(ctx), id, result); err != nil {
		p.logger.Warn("failed to record job result", "job", id, "err", err)
	}
}
