// Package s3 implements object.Client for Amazon S3.
//
// Blocks are uploaded with the transfer manager and listed with the
// ListObjectsV2 paginator. Missing keys map to blockstore.ErrNotFound.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	client := s3.NewClient(awss3.NewFromConfig(cfg), "my-bucket", "caches")
//	dev, err := object.Open(ctx, client, "volume-1")
package s3
