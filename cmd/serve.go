package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/vidx/internal/repositories"
	"github.com/desertthunder/vidx/internal/server"
	"github.com/desertthunder/vidx/internal/services"
	"github.com/desertthunder/vidx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP service until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port != 0 {
		cfg.Port = port
	}

	if err := os.MkdirAll(cfg.PublicDir, 0755); err != nil {
		return fmt.Errorf("failed to create public directory: %w", err)
	}

	repo, db, err := r.openJobs()
	if err != nil {
		return err
	}
	defer db.Close()

	invoker := r.invoker()
	if version, err := invoker.Version(ctx); err != nil {
		r.logger.Warn("ffmpeg is not available; requests will fail until it is installed", "binary", invoker.Binary(), "error", err)
	} else {
		r.logger.Info("using ffmpeg", "version", version)
	}

	processor := tasks.NewProcessor(
		services.NewHTTPFetcher(r.config.Fetch, r.httpClient, r.logger),
		services.NewLocalPublisher(cfg.PublicDir, cfg.PublicURL, r.logger),
		r.transcoderOrDefault(),
		tasks.Options{
			WorkDir:   r.config.Processing.WorkDir,
			Extension: r.config.Processing.OutputExtension,
			Recorder:  repositories.NewJobRecorderAdapter(repo),
			Logger:    r.logger,
		},
	)

	srv := server.New(cfg, server.Deps{
		Engine: processor,
		Jobs:   repo,
		Prober: invoker,
		Logger: r.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
