package ffmpeg

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/desertthunder/vidx/internal/shared"
)

// maxStderr bounds how much diagnostic text is carried in an error message.
const maxStderr = 4096

// TranscodeError is a failed ffmpeg run. It matches [shared.ErrTranscodeFailed].
type TranscodeError struct {
	Stderr   string
	ExitCode int // -1 when the process never exited normally
	Err      error
}

func (e *TranscodeError) Error() string {
	detail := lastLines(e.Stderr, 3)
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	if detail == "" {
		return shared.ErrTranscodeFailed.Error()
	}
	return fmt.Sprintf("%s: %s", shared.ErrTranscodeFailed, detail)
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

func (e *TranscodeError) Is(target error) bool {
	return target == shared.ErrTranscodeFailed
}

func newTranscodeError(stderr string, err error) *TranscodeError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if len(stderr) > maxStderr {
		stderr = stderr[len(stderr)-maxStderr:]
	}
	return &TranscodeError{Stderr: stderr, ExitCode: code, Err: err}
}

// lastLines keeps the tail of ffmpeg's stderr, where the actual error is printed.
func lastLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, " | ")
}
