// Package minio implements object.Client for MinIO and other
// S3-compatible object stores.
//
// # Usage
//
//	mc, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	client := blockminio.NewClient(mc, "my-bucket", "caches/")
//	dev, err := object.Open(ctx, client, "volume-1")
package minio
