package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/operations"
	"github.com/desertthunder/vidx/internal/shared"
)

// DefaultBinary is used when no path is configured.
const DefaultBinary = "ffmpeg"

// Result is the outcome of a successful invocation.
type Result struct {
	OutputPath string
	Stdout     string
	Elapsed    time.Duration
}

// Invoker executes invocations with a fixed ffmpeg binary.
type Invoker struct {
	binary string
	logger *log.Logger
}

// NewInvoker creates an Invoker for binary (a name resolved on PATH or an absolute path).
func NewInvoker(binary string, logger *log.Logger) *Invoker {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Invoker{binary: binary, logger: shared.WithLogger(logger, "component", "ffmpeg")}
}

// Binary returns the configured binary.
func (i *Invoker) Binary() string {
	return i.binary
}

// Run executes inv and returns its declared output path.
//
// Cancelling ctx kills the process; that surfaces as a [TranscodeError] like any other failure.
func (i *Invoker) Run(ctx context.Context, inv *operations.Invocation) (*Result, error) {
	if inv == nil || len(inv.Args) == 0 {
		return nil, fmt.Errorf("%w: empty invocation", shared.ErrInvalidInput)
	}

	cmd := exec.CommandContext(ctx, i.binary, inv.Args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	i.logger.Debug("running", "kind", inv.Kind, "args", strings.Join(inv.Args, " "))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		terr := newTranscodeError(stderr.String(), err)
		i.logger.Error("transcode failed", "kind", inv.Kind, "exit", terr.ExitCode, "elapsed", elapsed, "stderr", lastLines(terr.Stderr, 3))
		return nil, terr
	}

	i.logger.Info("transcode complete", "kind", inv.Kind, "elapsed", elapsed)
	return &Result{OutputPath: inv.OutputPath, Stdout: stdout.String(), Elapsed: elapsed}, nil
}

// Version runs "<binary> -version" and returns its first line.
func (i *Invoker) Version(ctx context.Context) (string, error) {
	if _, err := exec.LookPath(i.binary); err != nil {
		return "", fmt.Errorf("%w: %s not found: %v", shared.ErrTranscodeFailed, i.binary, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, i.binary, "-version")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", newTranscodeError(stderr.String(), err)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}
