package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/shared"
	"github.com/google/uuid"
)

// ProcessedDir is the subdirectory of the public directory that holds published artifacts.
const ProcessedDir = "processed"

// LocalPublisher copies artifacts into a directory served under a public base URL.
type LocalPublisher struct {
	dir     string
	baseURL string
	logger  *log.Logger
}

// NewLocalPublisher creates a publisher writing to <publicDir>/processed and returning
// <publicURL>/processed/<name>.
func NewLocalPublisher(publicDir, publicURL string, logger *log.Logger) *LocalPublisher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LocalPublisher{
		dir:     filepath.Join(publicDir, ProcessedDir),
		baseURL: strings.TrimRight(publicURL, "/"),
		logger:  shared.WithLogger(logger, "component", "publisher"),
	}
}

// Dir returns the directory artifacts are written to.
func (p *LocalPublisher) Dir() string {
	return p.dir
}

// Publish copies path to <uuid>_<basename> and returns its URL. The source file is left alone.
func (p *LocalPublisher) Publish(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrPublishFailed, err)
	}

	name := uuid.NewString() + "_" + filepath.Base(path)
	if err := p.copyAtomic(path, name); err != nil {
		p.logger.Error("publish failed", "path", path, "err", err)
		return "", fmt.Errorf("%w: %v", shared.ErrPublishFailed, err)
	}

	ref := p.baseURL + "/" + ProcessedDir + "/" + url.PathEscape(name)
	p.logger.Info("published artifact", "name", name)
	return ref, nil
}

func (p *LocalPublisher) copyAtomic(path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(p.dir, ".publish-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(p.dir, name)); err != nil {
		cleanup()
		return err
	}
	return nil
}
