package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/vidx/internal/ffmpeg"
	"github.com/desertthunder/vidx/internal/operations"
	"github.com/desertthunder/vidx/internal/shared"
)

// ScriptedTranscoder stands in for [ffmpeg.Invoker]. Each successful call writes the input's
// content plus "|<kind>" to the output path, so a chained result spells out the steps it went
// through.
type ScriptedTranscoder struct {
	FailAt  int   // 1-based call number that fails; zero never fails
	FailErr error // returned at FailAt; defaults to a transcode failure

	mu    sync.Mutex
	calls []*operations.Invocation
}

func (s *ScriptedTranscoder) Run(ctx context.Context, inv *operations.Invocation) (*ffmpeg.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, inv)
	n := len(s.calls)
	s.mu.Unlock()

	if s.FailAt == n {
		if s.FailErr != nil {
			return nil, s.FailErr
		}
		return nil, &ffmpeg.TranscodeError{Stderr: fmt.Sprintf("scripted failure at call %d", n), ExitCode: 1}
	}

	content, err := os.ReadFile(inv.InputPath)
	if err != nil {
		return nil, &ffmpeg.TranscodeError{Stderr: err.Error(), ExitCode: 1, Err: err}
	}
	content = append(content, "|"+string(inv.Kind)...)
	if err := os.WriteFile(inv.OutputPath, content, 0o644); err != nil {
		return nil, &ffmpeg.TranscodeError{Stderr: err.Error(), ExitCode: 1, Err: err}
	}
	return &ffmpeg.Result{OutputPath: inv.OutputPath, Elapsed: time.Millisecond}, nil
}

// Calls returns the invocations seen so far, in order.
func (s *ScriptedTranscoder) Calls() []*operations.Invocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*operations.Invocation(nil), s.calls...)
}

// Kinds returns the kind of each invocation seen so far.
func (s *ScriptedTranscoder) Kinds() []operations.Kind {
	calls := s.Calls()
	kinds := make([]operations.Kind, len(calls))
	for i, c := range calls {
		kinds[i] = c.Kind
	}
	return kinds
}

// RecordingFetcher writes Content to every destination it is asked for.
type RecordingFetcher struct {
	Content []byte
	Err     error

	mu   sync.Mutex
	Refs []string
}

func (f *RecordingFetcher) Fetch(ctx context.Context, ref, dest string) error {
	f.mu.Lock()
	f.Refs = append(f.Refs, ref)
	f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	if err := os.WriteFile(dest, f.Content, 0o644); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	return nil
}

// RecordingPublisher keeps the content of every published file and returns BaseURL/<name>.
type RecordingPublisher struct {
	BaseURL string
	Err     error

	mu       sync.Mutex
	Contents []string
}

func (p *RecordingPublisher) Publish(ctx context.Context, path string) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrPublishFailed, err)
	}

	p.mu.Lock()
	p.Contents = append(p.Contents, string(content))
	p.mu.Unlock()
	return p.BaseURL + "/" + filepath.Base(path), nil
}
