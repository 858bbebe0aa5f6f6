package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/blockcache/blockstore"
	"github.com/hupe1980/blockcache/blockstore/object"
	"github.com/hupe1980/blockcache/codec"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ object.Client = (*Client)(nil)

func TestMapError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	assert.ErrorIs(t, mapError(notFound), blockstore.ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other))
}

// TestClient_Integration requires a running MinIO instance.
// Skip if not available.
func TestClient_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-blockcache"

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	if _, err := mc.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := mc.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	client := NewClient(mc, bucket, "test-prefix/")

	_, err = client.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, blockstore.ErrNotFound)

	dev, err := object.Open(ctx, client, t.Name(), func(o *object.Options) {
		o.BlockSize = 512
		o.Compression = codec.LZ4
	})
	require.NoError(t, err)

	block := make([]byte, 512)
	copy(block, "hello minio world")
	require.NoError(t, dev.WriteBlock(ctx, block, 1024))

	got := make([]byte, 512)
	require.NoError(t, dev.ReadBlock(ctx, got, 1024))
	assert.Equal(t, block, got)

	names, err := client.List(ctx, t.Name()+"/")
	require.NoError(t, err)
	assert.Contains(t, names, t.Name()+"/0000000000000002")
}
