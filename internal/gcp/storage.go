package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/storage"
)

// GetEnv reads an environment variable, falling back to a default when unset.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// BlobBucket stores published documents in a GCS bucket. It implements
// library.BlobStore.
type BlobBucket struct {
	client *storage.Client
	bucket string
}

// NewBlobBucket creates a bucket-backed blob store.
func NewBlobBucket(ctx context.Context, bucket string) (*BlobBucket, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name must be provided")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return &BlobBucket{client: client, bucket: bucket}, nil
}

// Upload writes data to the bucket and returns the object's public URL.
// Transient failures are retried with exponential backoff.
func (b *BlobBucket) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	const maxRetries = 4
	backoff := 1 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := func() error {
			writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
			defer cancel()

			w := b.client.Bucket(b.bucket).Object(objectName).NewWriter(writeCtx)
			w.ContentType = contentType
			if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
				_ = w.Close()
				return fmt.Errorf("io.Copy to GCS failed: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
			}
			return nil
		}()

		if err == nil {
			return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, objectName), nil
		}

		lastErr = err
		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", objectName,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			slog.Error("Context cancelled during backoff. Aborting retries.", "gcsObject", objectName, "error", ctx.Err())
			return "", ctx.Err()
		}
	}
	slog.Error("Upload failed after all retries.", "gcsObject", objectName, "error", lastErr)
	return "", fmt.Errorf("upload for %s failed after all retries: %w", objectName, lastErr)
}

// Delete removes an object from the bucket.
func (b *BlobBucket) Delete(ctx context.Context, objectName string) error {
	if err := b.client.Bucket(b.bucket).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete gs://%s/%s: %w", b.bucket, objectName, err)
	}
	return nil
}

// Close releases the underlying client.
func (b *BlobBucket) Close() error {
	return b.client.Close()
}
