package service

import (
	"context"
	"io"
)

// PhotoStore defines the interface for storing and serving listing photos
type PhotoStore interface {
	// Put stores a photo under the given key and returns the stored key
	Put(ctx context.Context, key string, contentType string, r io.Reader) (string, error)

	// Get opens the photo stored under the given key
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the photo stored under the given key
	Delete(ctx context.Context, key string) error
}
