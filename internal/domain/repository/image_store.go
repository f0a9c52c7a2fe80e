package repository

import (
	"context"
	"io"
)

// ImageStore persists uploaded listing images under caller-chosen names.
type ImageStore interface {
	// Save writes r under name and returns the public path or URL of the stored object.
	// A failed Save leaves nothing visible under name.
	Save(ctx context.Context, name, contentType string, size int64, r io.Reader) (string, error)
}
