package imagestore

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/rcmp123/marketplace/internal/domain/repository"
	"github.com/rcmp123/marketplace/pkg/helpers"
)

// S3 stores images in an S3-compatible bucket (MinIO, AWS).
type S3 struct {
	client *minio.Client
	bucket string
}

// NewS3 connects to endpoint and makes sure bucket exists.
func NewS3(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool, logger logrus.FieldLogger) (*S3, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("imagestore.NewS3: client for %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("imagestore.NewS3: check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("imagestore.NewS3: make bucket %s: %w", bucket, err)
		}
		logger.WithField("bucket", bucket).Info("s3 bucket created")
	}
	return &S3{client: client, bucket: bucket}, nil
}

// Save uploads r as a single object; size -1 lets minio stream it in parts.
func (s *S3) Save(ctx context.Context, name, contentType string, size int64, r io.Reader) (string, error) {
	if size <= 0 {
		size = -1
	}
	info, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("imagestore.S3.Save: put %s/%s: %w", s.bucket, name, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), info.Bucket, helpers.EscapePath(info.Key)), nil
}

var _ repository.ImageStore = (*S3)(nil)
