// Package storage persists listing photos behind a portable blob interface,
// so local disk and cloud buckets are interchangeable through a URL.
package storage

import (
	"context"
	"io"
	"log/slog"

	"agriconnect/config"
	"agriconnect/internal/domain/service"
	"agriconnect/internal/util"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Registered bucket drivers, selected by the bucket URL scheme
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
)

const defaultBucketURL = "mem://"

type blobPhotoStore struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// NewBlobPhotoStore opens the bucket named by the configured URL
func NewBlobPhotoStore(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (service.PhotoStore, error) {
	bucketURL := defaultBucketURL
	if cfg != nil && cfg.BucketURL != "" {
		bucketURL = cfg.BucketURL
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketURL)
	}

	return &blobPhotoStore{
		bucket: bucket,
		logger: logger,
	}, nil
}

// Put streams a photo into the bucket and returns its key
func (s *blobPhotoStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	writer, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to open writer for %s", key)
	}

	written, err := io.Copy(writer, r)
	if err != nil {
		// Closing after a failed copy aborts the write
		_ = writer.Close()

		return "", errors.Wrapf(err, "failed to write photo %s", key)
	}

	if err := writer.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to finalize photo %s", key)
	}

	s.logger.Debug("Stored photo",
		slog.String("key", key),
		slog.String("size", util.FormatBytes(written)),
	)

	return key, nil
}

// Get opens a photo for reading and reports its content type
func (s *blobPhotoStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	reader, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to open photo %s", key)
	}

	return reader, reader.ContentType(), nil
}

// Delete removes a photo from the bucket
func (s *blobPhotoStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil {
		return errors.Wrapf(err, "failed to delete photo %s", key)
	}

	return nil
}

// PhotoStoreParams holds dependencies for PhotoStore, injected by Fx
type PhotoStoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewPhotoStore wires the blob-backed photo store with bucket shutdown
func NewPhotoStore(params PhotoStoreParams) (service.PhotoStore, error) {
	store, err := NewBlobPhotoStore(params.Ctx, params.Config.Storage, params.Logger)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Closing photo bucket")

			return store.(*blobPhotoStore).bucket.Close()
		},
	})

	return store, nil
}

// Module provides the photo storage FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewPhotoStore),
)
