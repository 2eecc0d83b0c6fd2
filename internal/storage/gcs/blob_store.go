// Package gcs provides a BlobStore backed by Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Config captures the parameters required to connect to GCS.
type Config struct {
	Bucket string
	// Endpoint overrides the GCS API endpoint, e.g. for a local emulator.
	Endpoint string
}

// ErrObjectNotFound is returned when the requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// BlobStore reads objects from a configured GCS bucket.
type BlobStore struct {
	client *storage.Client
	bucket string
}

// NewClient creates a storage client using Application Default Credentials,
// or an unauthenticated client against cfg.Endpoint when one is set.
func NewClient(ctx context.Context, cfg Config) (*storage.Client, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return client, nil
}

// New creates a GCS-backed blob store.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &BlobStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// GetObject downloads the full contents of path from the bucket.
func (s *BlobStore) GetObject(ctx context.Context, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}
	reader, err := s.client.Bucket(s.bucket).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("gs://%s/%s: %w", s.bucket, path, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("open object gs://%s/%s: %w", s.bucket, path, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		closeErr := reader.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("read object: %w (close reader: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	if err := reader.Close(); err != nil {
		return nil, fmt.Errorf("close reader: %w", err)
	}
	return data, nil
}

// URI returns the gs:// location of path.
func (s *BlobStore) URI(path string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, path)
}
