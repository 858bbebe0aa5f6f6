// Package object maps a block device onto an object store.
//
// Each block is one object. Payloads carry a codec header, so blocks can be
// compressed with LZ4 or Zstd and still be read back by a Device configured
// differently. Clients for S3, MinIO and DynamoDB live in subpackages:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	client := s3.NewClient(awss3.NewFromConfig(cfg), "my-bucket", "caches/")
//	dev, err := object.Open(ctx, client, "volume-1", func(o *object.Options) {
//	    o.BlockSize = 4096
//	    o.Compression = codec.LZ4
//	})
package object
