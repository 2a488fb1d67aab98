package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/vidx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, errRequestFailed):
			os.Exit(1)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "vidx",
		Usage:   "Apply ffmpeg transformations to videos, one-off or as a service",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("VIDX_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at debug level",
			},
		},
		DisableSliceFlagSeparator: true,
		Before:                    r.Configure,
		Commands:                  r.register(),
	}
}
