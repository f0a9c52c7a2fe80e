package imagestore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/rcmp123/marketplace/internal/domain/repository"
	"github.com/rcmp123/marketplace/pkg/helpers"
)

// GCS stores images as objects under images/ in a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{client: client, bucket: bucket}
}

func (s *GCS) Save(ctx context.Context, name, contentType string, _ int64, r io.Reader) (string, error) {
	url, err := helpers.UploadObject(ctx, s.client, s.bucket, "images/"+name, contentType, r)
	if err != nil {
		return "", fmt.Errorf("imagestore.GCS.Save: %w", err)
	}
	return url, nil
}

var _ repository.ImageStore = (*GCS)(nil)
