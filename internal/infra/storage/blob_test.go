package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"agriconnect/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPhotoStore(t *testing.T) *blobPhotoStore {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewBlobPhotoStore(context.Background(), &config.StorageConfig{BucketURL: "mem://"}, logger)
	require.NoError(t, err)

	return store.(*blobPhotoStore)
}

func TestBlobPhotoStore_PutAndGet(t *testing.T) {
	store := newTestPhotoStore(t)
	ctx := context.Background()

	key, err := store.Put(ctx, "listings/abc/1.jpg", "image/jpeg", strings.NewReader("fake-jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "listings/abc/1.jpg", key)

	reader, contentType, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "image/jpeg", contentType)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "fake-jpeg-bytes", string(data))
}

func TestBlobPhotoStore_GetMissingKey(t *testing.T) {
	store := newTestPhotoStore(t)

	reader, _, err := store.Get(context.Background(), "listings/missing.jpg")
	require.Error(t, err)
	assert.Nil(t, reader)
}

func TestBlobPhotoStore_Delete(t *testing.T) {
	store := newTestPhotoStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "listings/abc/2.jpg", "image/png", strings.NewReader("png"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "listings/abc/2.jpg"))

	_, _, err = store.Get(ctx, "listings/abc/2.jpg")
	assert.Error(t, err)
}

func TestNewBlobPhotoStore_DefaultsToMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := NewBlobPhotoStore(context.Background(), nil, logger)
	require.NoError(t, err)
	assert.NotNil(t, store)
}
