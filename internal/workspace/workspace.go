// Package workspace manages the per-request working directory that holds the fetched source and every
// intermediate transcode output.
//
// An [Area] names files with random UUIDs, deletes superseded intermediates as a pipeline advances,
// and removes whatever is left when it is closed. Deletion failures are logged and swallowed: a
// leftover file never fails a transformation.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/shared"
	"github.com/google/uuid"
)

const defaultExtension = ".mp4"

// Options configures a new [Area].
type Options struct {
	BaseDir   string // Parent directory; empty means the OS temp dir
	Extension string // Extension for generated files; empty means .mp4
	Logger    *log.Logger
}

// Area is a request-scoped directory. It is not shared between requests.
type Area struct {
	dir    string
	ext    string
	logger *log.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a uniquely named directory under opts.BaseDir.
func New(opts Options) (*Area, error) {
	if opts.Extension == "" {
		opts.Extension = defaultExtension
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	if opts.BaseDir != "" {
		if err := os.MkdirAll(opts.BaseDir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrResourceAllocation, err)
		}
	}

	dir, err := os.MkdirTemp(opts.BaseDir, "vidx-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResourceAllocation, err)
	}

	return &Area{
		dir:    dir,
		ext:    opts.Extension,
		logger: shared.WithLogger(opts.Logger, "workspace", filepath.Base(dir)),
	}, nil
}

// Dir returns the directory backing the area.
func (a *Area) Dir() string {
	return a.dir
}

// NextOutputPath returns a fresh output_<uuid> path. Nothing is created on disk.
func (a *Area) NextOutputPath() (string, error) {
	return a.path("output")
}

// NextInputPath returns a fresh input_<uuid> path for a fetched source.
func (a *Area) NextInputPath(ext string) (string, error) {
	if ext == "" {
		ext = a.ext
	}
	return a.pathWithExt("input", ext)
}

func (a *Area) path(prefix string) (string, error) {
	return a.pathWithExt(prefix, a.ext)
}

func (a *Area) pathWithExt(prefix, ext string) (string, error) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return "", fmt.Errorf("%w: workspace already closed", shared.ErrResourceAllocation)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrResourceAllocation, err)
	}
	return filepath.Join(a.dir, prefix+"_"+id.String()+ext), nil
}

// Supersede deletes previous now that it is no longer the pipeline frontier.
//
// The original source is never deleted here, nor is anything outside the area. Failures are
// logged and reported as false.
func (a *Area) Supersede(previous, original string) bool {
	if previous == "" || previous == original || !a.owns(previous) {
		return false
	}

	if err := os.Remove(previous); err != nil && !errors.Is(err, fs.ErrNotExist) {
		a.logger.Warn("failed to remove superseded intermediate", "path", previous, "err", err)
		return false
	}
	a.logger.Debug("removed superseded intermediate", "path", filepath.Base(previous))
	return true
}

// Files lists the regular files currently in the area, sorted by name.
func (a *Area) Files() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(a.dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Close removes the area and everything left in it. It is safe to call more than once, and
// files already moved away by a publisher are not an error.
func (a *Area) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true

	if err := os.RemoveAll(a.dir); err != nil {
		a.logger.Warn("failed to remove workspace", "dir", a.dir, "err", err)
		return err
	}
	return nil
}

func (a *Area) owns(path string) bool {
	rel, err := filepath.Rel(a.dir, path)
	if err != nil {
		return false
	}
	return rel != "." && filepath.Dir(rel) == "." && rel != ".."
}
