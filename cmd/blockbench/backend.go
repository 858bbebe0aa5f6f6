package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/blockcache/blockstore"
	"github.com/hupe1980/blockcache/blockstore/dynamodb"
	blockminio "github.com/hupe1980/blockcache/blockstore/minio"
	"github.com/hupe1980/blockcache/blockstore/object"
	"github.com/hupe1980/blockcache/blockstore/s3"
	"github.com/hupe1980/blockcache/codec"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type backendConfig struct {
	kind        string
	path        string
	size        int64
	bucket      string
	prefix      string
	table       string
	endpoint    string
	accessKey   string
	secretKey   string
	name        string
	blockSize   int
	compression codec.Compression
}

// openDevice opens the device selected by cfg.kind.
func openDevice(ctx context.Context, cfg backendConfig) (blockstore.Device, error) {
	switch cfg.kind {
	case "file":
		return blockstore.OpenFile(cfg.path)
	case "mmap":
		return blockstore.OpenMmap(cfg.path, cfg.size)
	case "memory":
		return blockstore.NewMemoryDevice(nil), nil
	case "object":
		return openObject(ctx, object.NewMemoryClient(), cfg)
	case "s3":
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewClient(awss3.NewFromConfig(awsCfg), cfg.bucket, cfg.prefix)
		return openObject(ctx, client, cfg)
	case "dynamodb":
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewClient(awsdynamodb.NewFromConfig(awsCfg), cfg.table)
		return openObject(ctx, client, cfg)
	case "minio":
		mc, err := minio.New(cfg.endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretKey, ""),
			Secure: false,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return openObject(ctx, blockminio.NewClient(mc, cfg.bucket, cfg.prefix), cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.kind)
	}
}

func openObject(ctx context.Context, client object.Client, cfg backendConfig) (*object.Device, error) {
	return object.Open(ctx, client, cfg.name, func(o *object.Options) {
		o.BlockSize = cfg.blockSize
		o.Compression = cfg.compression
	})
}
