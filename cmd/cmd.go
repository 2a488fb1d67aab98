// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "out-dir",
			Usage: "Publish results under this directory instead of server.public_dir",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the response as JSON",
		},
		&cli.BoolFlag{
			Name:  "no-record",
			Usage: "Do not record the run in the job history",
		},
	}
}

// serveCommand runs the HTTP service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP processing service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// processCommand applies a single operation
func processCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "process",
		Usage: "Apply one operation to a video",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Source video URL or local path",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "op",
				Usage:    "Operation kind (e.g. trim, crop, text-overlay)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "Operation parameter as key=value (repeatable)",
			},
		}, outputFlags()...),
		Action: r.Process,
	}
}

// batchCommand applies an ordered list of operations
func batchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Apply an ordered list of operations to a video",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Source video URL or local path",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "ops",
				Usage:    "JSON file with [{type, parameters, order}] or {operations: [...]}",
				Required: true,
			},
		}, outputFlags()...),
		Action: r.Batch,
	}
}

// bulkCommand applies one operation list to many sources
func bulkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "bulk",
		Usage: "Apply the same operations to every source listed in a file",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "inputs",
				Usage:    "File with one source per line (# starts a comment)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "ops",
				Usage:    "JSON file with the operations to apply",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent pipelines (max 8)",
				Value: 2,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Sources started per second",
				Value: 2,
			},
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "Write a per-source manifest to this path",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Manifest format (json or csv)",
				Value: "json",
			},
		}, outputFlags()...),
		Action: r.Bulk,
	}
}

// planCommand prints compiled steps without running them
func planCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Show the ffmpeg invocations a batch would run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ops",
				Usage:    "JSON file with the operations to plan",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Source name shown in the plan",
				Value:   "input.mp4",
			},
			&cli.BoolFlag{
				Name:  "dot",
				Usage: "Output a Graphviz DOT graph",
			},
		},
		Action: r.Plan,
	}
}

// checkCommand reports whether ffmpeg can be run
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Report ffmpeg availability and version",
		Action: r.Check,
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write the example configuration to the --config path",
				Action: r.SetupConfig,
			},
		},
	}
}

// jobsCommand reads the job history
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Inspect the job history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent jobs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (running, succeeded, failed)",
					},
					&cli.StringFlag{
						Name:  "operation",
						Usage: "Filter by operation label",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of jobs to list",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (text, csv, json)",
						Value: "text",
					},
				},
				Action: r.JobsList,
			},
			{
				Name:  "show",
				Usage: "Show one job with its steps",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.JobsShow,
			},
		},
	}
}
