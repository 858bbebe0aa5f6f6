// Package blockcache provides a fixed-capacity, write-back block cache that
// sits between byte-range I/O and a block-addressed backing store.
//
// # Quick Start
//
//	dev, _ := blockstore.OpenFile("./data.bin")
//	c, _ := blockcache.New(blockcache.DefaultBlockSize, 64)
//	defer c.Close(ctx)
//
//	n, err := c.WriteRange(ctx, dev, 10_000, []byte("hello"))
//	n, err = c.ReadRange(ctx, dev, 10_000, buf)
//	err = c.FlushAll(ctx, dev)
//
// Or with a cursor:
//
//	f := blockcache.OpenFile(ctx, c, dev)
//	f.Write(data)
//	f.Seek(0, io.SeekStart)
//	f.Read(buf)
//	f.Close() // flush, drop from cache, close device
//
// # Caching Model
//
// The cache holds at most Capacity blocks of BlockSize bytes. Blocks are
// loaded whole on a miss; blocks past the end of the device read as zeros.
// Writes only touch resident blocks and mark them dirty. When the cache is
// full the block admitted first is evicted (FIFO; hits do not refresh a
// block's position) and written back if dirty. FlushAll writes all dirty
// blocks of a device without evicting them.
//
// If the write-back of an evicted block fails, the block is dropped anyway
// and its modifications are lost; the triggering operation returns an error
// matching ErrStorageWrite. Call FlushAll regularly to bound that risk.
//
// # Errors
//
//   - ErrInvalidArgument: negative offsets, non-positive sizes, bad seeks
//   - ErrStorageRead / ErrStorageWrite: wrapped in *StorageError with the
//     block number and the device error
//   - ErrClosed: use after Close
//
// # Concurrency
//
// Cache and File are not safe for concurrent use. Sharded partitions blocks
// over independently locked caches and may be shared between goroutines.
//
// # Backing Stores
//
// See package blockstore for file, mmap, in-memory and throttled devices,
// and blockstore/object for S3, MinIO and DynamoDB.
package blockcache
