package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/vidx/internal/operations"
	"github.com/desertthunder/vidx/internal/pipeline"
	"github.com/desertthunder/vidx/internal/shared"
	"github.com/desertthunder/vidx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Process applies a single operation to --input.
func (r *Runner) Process(ctx context.Context, cmd *cli.Command) error {
	params, err := operations.ParseAssignments(cmd.StringSlice("param"))
	if err != nil {
		return err
	}

	processor, cleanup, err := r.newProcessor(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	req := tasks.ProcessRequest{
		VideoURL:   cmd.String("input"),
		Operation:  cmd.String("op"),
		Parameters: params,
	}

	progress, stop := r.watch(cmd.Bool("json"))
	resp := processor.Process(ctx, req, progress)
	stop()

	return r.report(resp, cmd.Bool("json"))
}

// Batch applies the operations in --ops to --input.
func (r *Runner) Batch(ctx context.Context, cmd *cli.Command) error {
	ops, err := loadOperations(cmd.String("ops"))
	if err != nil {
		return err
	}

	processor, cleanup, err := r.newProcessor(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	req := tasks.BatchRequest{VideoURL: cmd.String("input"), Operations: ops}

	progress, stop := r.watch(cmd.Bool("json"))
	resp := processor.Batch(ctx, req, progress)
	stop()

	return r.report(resp, cmd.Bool("json"))
}

func (r *Runner) report(resp *tasks.Response, asJSON bool) error {
	if asJSON {
		if err := r.writeJSON(resp, true); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s", r.palette.Response(resp))
	}

	if !resp.Success {
		return errRequestFailed
	}
	return nil
}

// Bulk applies the operations in --ops to every source in --inputs.
func (r *Runner) Bulk(ctx context.Context, cmd *cli.Command) error {
	refs, err := readLines(cmd.String("inputs"))
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("%w: %s lists no sources", shared.ErrMissingArgument, cmd.String("inputs"))
	}

	ops, err := loadOperations(cmd.String("ops"))
	if err != nil {
		return err
	}

	processor, cleanup, err := r.newProcessor(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r.logger.Info("starting bulk run", "sources", len(refs), "operations", len(ops))

	progress, stop := r.watch(cmd.Bool("json"))
	result, err := processor.BulkBatch(ctx, progress, refs, ops, tasks.BulkOpts{
		NumWorkers:     int(cmd.Int("workers")),
		RateLimit:      float64(cmd.Float("rate")),
		ManifestPath:   cmd.String("manifest"),
		ManifestFormat: cmd.String("format"),
	})
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(result, true); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s", r.palette.Bulk(result))
	}

	if result.Failed > 0 {
		return errRequestFailed
	}
	return nil
}

// Plan prints the invocations --ops compiles to, in run order, without running them.
func (r *Runner) Plan(ctx context.Context, cmd *cli.Command) error {
	ops, err := loadOperations(cmd.String("ops"))
	if err != nil {
		return err
	}

	input := cmd.String("input")
	plan, err := pipeline.Plan(input, ops)
	if err != nil {
		return err
	}

	if cmd.Bool("dot") {
		graph, err := pipeline.DOT(input, plan)
		if err != nil {
			return err
		}
		return r.writePlain("%s", graph)
	}

	return r.writePlain("%s", r.palette.Plan(r.config.Processing.FFmpegPath, input, plan))
}

// Check reports whether the configured ffmpeg binary runs.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	inv := r.invoker()
	version, err := inv.Version(ctx)
	r.writePlain("%s", r.palette.Check(inv.Binary(), version, err))
	if err != nil {
		return errRequestFailed
	}
	return nil
}

// loadOperations reads a JSON operation list, either bare or wrapped as {"operations": [...]}.
func loadOperations(path string) ([]operations.Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read operations file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: operations file %s is empty", shared.ErrInvalidInput, path)
	}

	if data[0] == '[' {
		var ops []operations.Operation
		if err := json.Unmarshal(data, &ops); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, path, err)
		}
		return ops, nil
	}

	var wrapped struct {
		Operations *[]operations.Operation `json:"operations"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, path, err)
	}
	if wrapped.Operations == nil {
		return nil, fmt.Errorf("%w: %s has no operations list", shared.ErrInvalidInput, path)
	}
	return *wrapped.Operations, nil
}
