package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidx/internal/formatter"
	"github.com/desertthunder/vidx/internal/models"
	"github.com/desertthunder/vidx/internal/shared"
	"github.com/urfave/cli/v3"
)

// JobsList prints recent jobs, newest first.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if s := cmd.String("status"); s != "" {
		status, err := models.ParseJobStatus(s)
		if err != nil {
			return err
		}
		criteria["status"] = string(status)
	}
	if op := cmd.String("operation"); op != "" {
		criteria["operation"] = op
	}

	repo, db, err := r.openJobs()
	if err != nil {
		return err
	}
	defer db.Close()

	jobs, err := repo.List(criteria)
	if err != nil {
		return err
	}

	out, err := formatter.FormatJobs(jobs, cmd.String("format"))
	if err != nil {
		return err
	}
	return r.writePlain("%s", out)
}

// JobsShow prints one job with its steps.
func (r *Runner) JobsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrMissingArgument)
	}

	repo, db, err := r.openJobs()
	if err != nil {
		return err
	}
	defer db.Close()

	job, err := repo.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(formatter.ToJobView(job), true)
	}
	return r.writePlain("%s", formatter.JobToText(job))
}
