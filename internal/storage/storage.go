// Package storage persists generation artifacts (photos, masks, results) by
// key, either on the local filesystem or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("storage: object not found")

// ArtifactStore is the surface the session layer writes artifacts through.
type ArtifactStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

var (
	_ ArtifactStore = (*FileStore)(nil)
	_ ArtifactStore = (*S3Store)(nil)
)
