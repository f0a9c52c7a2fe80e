package imagestore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rcmp123/marketplace/internal/domain/repository"
)

// Local stores images in a directory served by the HTTP layer under URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
}

// NewLocal creates dir if needed.
func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagestore.NewLocal: %w", err)
	}
	return &Local{Dir: dir, URLPrefix: urlPrefix}, nil
}

// Save streams r into a temp file next to the destination, fsyncs it and
// renames it into place, so readers never observe a partial image.
func (s *Local) Save(ctx context.Context, name, _ string, _ int64, r io.Reader) (string, error) {
	const op = "imagestore.Local.Save"
	if name != filepath.Base(name) {
		return "", fmt.Errorf("%s: invalid name %q", op, name)
	}
	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := io.Copy(tmp, ctxReader{ctx: ctx, r: r}); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.Dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.URLPrefix + "/" + url.PathEscape(name), nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

var _ repository.ImageStore = (*Local)(nil)
