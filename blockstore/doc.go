// Package blockstore provides the backing stores a blockcache.Cache reads
// blocks from and writes them back to.
//
// Device is the interface for block-aligned I/O against a backing store.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - FileDevice: a regular file (pread/pwrite, fdatasync on Linux)
//   - MmapDevice: a fixed-size file mapped read-write
//   - MemoryDevice: a growable in-memory device with I/O counters, for tests
//   - ThrottledDevice: bandwidth-limited wrapper around another Device
//   - object.Device: one object per block on S3, MinIO or DynamoDB
//
// # Custom Implementations
//
//	type Device interface {
//	    ReadBlock(ctx, p, off) error   // zero-fill past the end
//	    WriteBlock(ctx, p, off) error
//	    Size(ctx) (int64, error)
//	    Sync(ctx) error
//	    Close() error
//	}
//
// Short reads at the end of the store are never errors; the remainder of
// the block must read as zero.
package blockstore
