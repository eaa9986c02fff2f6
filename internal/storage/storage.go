package storage

import (
	"context"
	"time"
)

// ObjectStorage defines common object operations across backends.
// Uploads and downloads never transit this server: callers receive
// time-limited URLs and talk to the object store directly.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Storage wraps an ObjectStorage backend with a stable API.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// PresignUpload issues a time-limited URL that accepts a PUT of the object.
func (s *Storage) PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	return s.backend.PresignUpload(ctx, key, contentType, expiry)
}

// PresignDownload issues a time-limited URL that serves the object.
func (s *Storage) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.backend.PresignDownload(ctx, key, expiry)
}

// Delete removes an object from the configured bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}
