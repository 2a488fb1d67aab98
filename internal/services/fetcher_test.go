package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/vidx/internal/shared"
	tu "github.com/desertthunder/vidx/internal/testing"
)

func newFetcher(maxBytes int64, client *http.Client) *HTTPFetcher {
	return NewHTTPFetcher(shared.FetchConfig{TimeoutSeconds: 5, MaxBytes: maxBytes}, client, shared.NewLogger(io.Discard))
}

func TestHTTPFetcher(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom Client", func(t *testing.T) {
			client := &http.Client{}
			f := newFetcher(0, client)
			if f.httpClient != client {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			f := newFetcher(0, nil)
			if f.httpClient == nil || f.httpClient.Timeout.Seconds() != 5 {
				t.Errorf("expected client with 5s timeout, got %+v", f.httpClient)
			}
		})
	})

	t.Run("Download", func(t *testing.T) {
		t.Run("Successful Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				w.Write([]byte("video-bytes"))
			}))
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "input.mp4")
			if err := newFetcher(0, nil).Fetch(context.Background(), server.URL+"/clip.mp4", dest); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := tu.MustReadFile(t, dest); got != "video-bytes" {
				t.Errorf("unexpected content %q", got)
			}
		})

		t.Run("Non-2xx Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			}))
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "input.mp4")
			err := newFetcher(0, nil).Fetch(context.Background(), server.URL, dest)
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), "404") {
				t.Errorf("expected status in error, got %v", err)
			}
			if _, err := os.Stat(dest); !os.IsNotExist(err) {
				t.Error("destination should not exist after a failed fetch")
			}
		})

		t.Run("Body Exceeds Limit", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Transfer-Encoding", "chunked")
				w.Write([]byte(strings.Repeat("x", 64)))
			}))
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "input.mp4")
			err := newFetcher(16, nil).Fetch(context.Background(), server.URL, dest)
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
			if _, err := os.Stat(dest); !os.IsNotExist(err) {
				t.Error("partial download should be removed")
			}
		})

		t.Run("Declared Length Exceeds Limit", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Length", "64")
				w.Write([]byte(strings.Repeat("x", 64)))
			}))
			defer server.Close()

			err := newFetcher(16, nil).Fetch(context.Background(), server.URL, filepath.Join(t.TempDir(), "in"))
			if err == nil || !strings.Contains(err.Error(), "limit is 16") {
				t.Errorf("expected size limit error, got %v", err)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

			err := newFetcher(0, client).Fetch(context.Background(), "http://example.com/a.mp4", filepath.Join(t.TempDir(), "in"))
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Errorf("expected ErrFetchFailed, got %v", err)
			}
		})

		t.Run("Body Read Error", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, ContentLength: -1}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

			err := newFetcher(0, client).Fetch(context.Background(), "https://example.com/a.mp4", filepath.Join(t.TempDir(), "in"))
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Errorf("expected ErrFetchFailed, got %v", err)
			}
		})
	})

	t.Run("Local", func(t *testing.T) {
		fetcher := newFetcher(0, nil).WithLocalFiles()
		src := filepath.Join(t.TempDir(), "local.mov")
		if err := os.WriteFile(src, []byte("local-bytes"), 0o644); err != nil {
			t.Fatal(err)
		}

		for _, ref := range []string{src, "file://" + src} {
			t.Run(ref, func(t *testing.T) {
				dest := filepath.Join(t.TempDir(), "input.mov")
				if err := fetcher.Fetch(context.Background(), ref, dest); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if got := tu.MustReadFile(t, dest); got != "local-bytes" {
					t.Errorf("unexpected content %q", got)
				}
			})
		}

		t.Run("Missing File", func(t *testing.T) {
			err := fetcher.Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"), filepath.Join(t.TempDir(), "in"))
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Errorf("expected ErrFetchFailed, got %v", err)
			}
		})

		t.Run("Directory", func(t *testing.T) {
			err := fetcher.Fetch(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "in"))
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Errorf("expected ErrFetchFailed, got %v", err)
			}
		})
	})

	t.Run("Local Refused By Default", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "secret.txt")
		if err := os.WriteFile(src, []byte("secret"), 0o644); err != nil {
			t.Fatal(err)
		}

		for _, ref := range []string{src, "file://" + src, "C:" + src} {
			dest := filepath.Join(t.TempDir(), "in")
			err := newFetcher(0, nil).Fetch(context.Background(), ref, dest)
			if !errors.Is(err, shared.ErrFetchFailed) || !strings.Contains(err.Error(), "not allowed") {
				t.Errorf("Fetch(%q) = %v, want refused local source", ref, err)
			}
			if _, err := os.Stat(dest); !os.IsNotExist(err) {
				t.Errorf("Fetch(%q) should not write a destination", ref)
			}
		}
	})

	t.Run("Rejected References", func(t *testing.T) {
		for _, ref := range []string{"", "   ", "ftp://example.com/a.mp4"} {
			err := newFetcher(0, nil).Fetch(context.Background(), ref, filepath.Join(t.TempDir(), "in"))
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Errorf("Fetch(%q) = %v, want ErrFetchFailed", ref, err)
			}
		}
	})
}

func TestSourceExtension(t *testing.T) {
	tt := []struct {
		ref  string
		want string
	}{
		{ref: "https://cdn.example.com/v/clip.MP4?sig=abc", want: ".mp4"},
		{ref: "/videos/movie.mov", want: ".mov"},
		{ref: "https://example.com/watch", want: ""},
		{ref: "https://example.com/file.tar.gz", want: ".gz"},
		{ref: "https://example.com/odd.m p4", want: ""},
		{ref: "https://example.com/long.extension", want: ""},
	}

	for _, tc := range tt {
		t.Run(tc.ref, func(t *testing.T) {
			if got := SourceExtension(tc.ref); got != tc.want {
				t.Errorf("SourceExtension(%q) = %q, want %q", tc.ref, got, tc.want)
			}
		})
	}
}
