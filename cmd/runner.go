package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/ffmpeg"
	"github.com/desertthunder/vidx/internal/pipeline"
	"github.com/desertthunder/vidx/internal/repositories"
	"github.com/desertthunder/vidx/internal/services"
	"github.com/desertthunder/vidx/internal/shared"
	"github.com/desertthunder/vidx/internal/tasks"
	"github.com/desertthunder/vidx/internal/ui"
	"github.com/urfave/cli/v3"
)

// errRequestFailed marks a run whose failure was already reported to the user.
var errRequestFailed = errors.New("request failed")

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	transcoder pipeline.Transcoder
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Transcoder pipeline.Transcoder // Defaults to an ffmpeg invoker built from the config
	HTTPClient *http.Client        // Used for downloads; nil builds one from [fetch] settings
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		transcoder: opts.Transcoder,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    ui.Default,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, processCommand, batchCommand, bulkCommand, planCommand, checkCommand, setupCommand, jobsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Configure loads the --config file when it exists and applies the log level.
//
// A missing file leaves the defaults in place so "setup config" can create it.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	r.configPath = path

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.logger.Debug("loaded config", "path", path)
	} else if cmd.IsSet("config") {
		r.logger.Warn("config file not found, using defaults", "path", path)
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// invoker builds the ffmpeg invoker described by the config.
func (r *Runner) invoker() *ffmpeg.Invoker {
	return ffmpeg.NewInvoker(r.config.Processing.FFmpegPath, r.logger)
}

func (r *Runner) transcoderOrDefault() pipeline.Transcoder {
	if r.transcoder != nil {
		return r.transcoder
	}
	return r.invoker()
}

// publisher publishes into outDir when set, otherwise into the server's public directory.
func (r *Runner) publisher(outDir string) (*services.LocalPublisher, error) {
	if outDir == "" {
		return services.NewLocalPublisher(r.config.Server.PublicDir, r.config.Server.PublicURL, r.logger), nil
	}

	abs, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("%w: out-dir %s: %v", shared.ErrInvalidArgument, outDir, err)
	}
	return services.NewLocalPublisher(abs, "file://"+filepath.ToSlash(abs), r.logger), nil
}

// openJobs opens and migrates the job database.
func (r *Runner) openJobs() (*repositories.JobRepository, *sql.DB, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return repositories.NewJobRepository(db), db, nil
}

// newProcessor wires a Processor for a CLI run. Recording failures degrade to an unrecorded run.
func (r *Runner) newProcessor(cmd *cli.Command) (*tasks.Processor, func(), error) {
	publisher, err := r.publisher(cmd.String("out-dir"))
	if err != nil {
		return nil, nil, err
	}

	opts := tasks.Options{
		WorkDir:   r.config.Processing.WorkDir,
		Extension: r.config.Processing.OutputExtension,
		Logger:    r.logger,
	}
	cleanup := func() {}

	if !cmd.Bool("no-record") {
		repo, db, err := r.openJobs()
		if err != nil {
			r.logger.Warn("job history unavailable, run will not be recorded", "error", err)
		} else {
			opts.Recorder = repositories.NewJobRecorderAdapter(repo)
			cleanup = func() { db.Close() }
		}
	}

	fetcher := services.NewHTTPFetcher(r.config.Fetch, r.httpClient, r.logger).WithLocalFiles()
	return tasks.NewProcessor(fetcher, publisher, r.transcoderOrDefault(), opts), cleanup, nil
}

// watch prints progress updates until the returned stop function is called.
func (r *Runner) watch(quiet bool) (chan<- tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			if !quiet {
				r.writePlain("%s", r.palette.Progress(update))
			}
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// readLines returns the non-blank lines of path, skipping # comments.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var lines []string
	for line := range strings.SplitSeq(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
