package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidx/internal/shared"
)

// HTTPFetcher downloads remote sources. Local paths and file:// refs are copied only after
// [HTTPFetcher.WithLocalFiles].
type HTTPFetcher struct {
	httpClient *http.Client
	maxBytes   int64
	allowLocal bool
	logger     *log.Logger
}

// NewHTTPFetcher creates a fetcher. A nil client gets one with cfg's timeout; a zero
// cfg.MaxBytes means no size cap.
func NewHTTPFetcher(cfg shared.FetchConfig, client *http.Client, logger *log.Logger) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &HTTPFetcher{
		httpClient: client,
		maxBytes:   cfg.MaxBytes,
		logger:     shared.WithLogger(logger, "component", "fetcher"),
	}
}

// WithLocalFiles returns a copy of f that also copies local paths and file:// refs.
// Only trusted callers such as the CLI should use it.
func (f *HTTPFetcher) WithLocalFiles() *HTTPFetcher {
	c := *f
	c.allowLocal = true
	return &c
}

var errLocalRefused = errors.New("local sources are not allowed")

// Fetch writes the source named by ref to dest. A partially written dest is removed on failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref, dest string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("%w: empty source reference", shared.ErrFetchFailed)
	}

	start := time.Now()
	var (
		n   int64
		err error
	)

	u, perr := url.Parse(ref)
	switch {
	case perr != nil || u.Scheme == "" || len(u.Scheme) == 1:
		if !f.allowLocal {
			err = errLocalRefused
			break
		}
		n, err = f.copyLocal(ref, dest)
	case u.Scheme == "file":
		if !f.allowLocal {
			err = errLocalRefused
			break
		}
		n, err = f.copyLocal(u.Path, dest)
	case u.Scheme == "http" || u.Scheme == "https":
		n, err = f.download(ctx, u.String(), dest)
	default:
		err = fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if err != nil {
		_ = os.Remove(dest)
		f.logger.Error("fetch failed", "ref", ref, "err", err)
		return fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	f.logger.Info("fetched source", "ref", ref, "bytes", n, "elapsed", time.Since(start))
	return nil
}

func (f *HTTPFetcher) download(ctx context.Context, ref, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return 0, fmt.Errorf("source is %d bytes, limit is %d", resp.ContentLength, f.maxBytes)
	}

	return f.write(resp.Body, dest)
}

func (f *HTTPFetcher) copyLocal(path, dest string) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}

	return f.write(src, dest)
}

var errTooLarge = errors.New("source exceeds size limit")

func (f *HTTPFetcher) write(r io.Reader, dest string) (int64, error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}

	if f.maxBytes > 0 {
		r = io.LimitReader(r, f.maxBytes+1)
	}

	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to read source: %w", err)
	}
	if f.maxBytes > 0 && n > f.maxBytes {
		return n, fmt.Errorf("%w (%d bytes)", errTooLarge, f.maxBytes)
	}
	return n, nil
}
