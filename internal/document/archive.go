package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotArchived is returned when an object is missing from the archive.
var ErrNotArchived = errors.New("document not archived")

// Archive keeps a copy of every uploaded document.
type Archive interface {
	Put(ctx context.Context, projectID, name string, data []byte) error
	Get(ctx context.Context, projectID, name string) ([]byte, error)
}

// ObjectKey is the archive key for a project document.
func ObjectKey(projectID, name string) string {
	return path.Join("projects", projectID, path.Base(name))
}

// S3Options configures an S3-compatible archive.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Archive stores documents in an S3-compatible bucket.
type S3Archive struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewS3Archive connects to the bucket, creating it when missing.
func NewS3Archive(ctx context.Context, opts S3Options, logger *slog.Logger) (*S3Archive, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("created archive bucket", "bucket", opts.Bucket)
	}

	return &S3Archive{client: client, bucket: opts.Bucket, logger: logger}, nil
}

// Put uploads a document.
func (a *S3Archive) Put(ctx context.Context, projectID, name string, data []byte) error {
	key := ObjectKey(projectID, name)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	a.logger.Debug("archived document", "key", key, "bytes", len(data))
	return nil
}

// Get downloads a document.
func (a *S3Archive) Get(ctx context.Context, projectID, name string) ([]byte, error) {
	key := ObjectKey(projectID, name)
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotArchived, key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return buf.Bytes(), nil
}
