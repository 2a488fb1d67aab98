package services

import (
	"context"
	"net/url"
	"path"
	"strings"
)

// SourceProvider retrieves the video named by ref and writes it to dest.
type SourceProvider interface {
	Fetch(ctx context.Context, ref, dest string) error
}

// Publisher stores a finished artifact and returns a reference the caller can hand out.
type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

// SourceExtension returns the lowercase file extension of ref's path, or "" when it has no
// plausible one. Query strings and fragments are ignored.
func SourceExtension(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}

	ext := strings.ToLower(path.Ext(p))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
