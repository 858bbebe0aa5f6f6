package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/blockcache/blockstore"
	"github.com/minio/minio-go/v7"
)

// Client implements object.Client for MinIO and S3-compatible storage.
type Client struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewClient creates a client storing objects under rootPrefix in bucket.
func NewClient(client *minio.Client, bucket, rootPrefix string) *Client {
	return &Client{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (c *Client) key(name string) string {
	return path.Join(c.prefix, name)
}

// Get implements object.Client.
func (c *Client) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, c.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(err)
	}
	return data, nil
}

// Put implements object.Client.
func (c *Client) Put(ctx context.Context, name string, data []byte) error {
	_, err := c.client.PutObject(ctx, c.bucket, c.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

// List implements object.Client. Returned keys are relative to the root prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := c.key(prefix)
	if strings.HasSuffix(prefix, "/") {
		fullPrefix += "/"
	}

	var names []string
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, c.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

func mapError(err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return blockstore.ErrNotFound
	}
	return err
}
