package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const defaultUploadTimeout = 60 * time.Second

var (
	errInvalidBucket = errors.New("storage: bucket name is required")
	errInvalidObject = errors.New("storage: object name is required")
)

// ExportUploader writes export archives to a Cloud Storage bucket so they can
// be re-downloaded after the request completes.
type ExportUploader struct {
	client  *storage.Client
	bucket  string
	timeout time.Duration
}

// UploaderOption customises ExportUploader behaviour.
type UploaderOption func(*ExportUploader)

// WithUploadTimeout overrides the per-object upload timeout.
func WithUploadTimeout(d time.Duration) UploaderOption {
	return func(u *ExportUploader) {
		if d > 0 {
			u.timeout = d
		}
	}
}

// NewExportUploader constructs an ExportUploader bound to the given bucket.
func NewExportUploader(client *storage.Client, bucket string, opts ...UploaderOption) (*ExportUploader, error) {
	if client == nil {
		return nil, errors.New("storage: client is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errInvalidBucket
	}

	uploader := &ExportUploader{
		client:  client,
		bucket:  bucket,
		timeout: defaultUploadTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(uploader)
		}
	}
	return uploader, nil
}

// Upload stores the archive bytes under the given object name and returns the
// gs:// URI of the written object.
func (u *ExportUploader) Upload(ctx context.Context, object string, contentType string, data []byte) (string, error) {
	if u == nil || u.client == nil {
		return "", errors.New("storage: uploader not initialised")
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return "", errInvalidObject
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	writer := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("storage: write object %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("storage: close object %s: %w", object, err)
	}

	return fmt.Sprintf("gs://%s/%s", u.bucket, object), nil
}
