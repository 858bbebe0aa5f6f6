// Package resource implements the Controller for limits shared between
// caches and storage devices.
//
// The Controller manages three resource types:
//
//   - Memory: block buffers reserved by a cache at construction (non-blocking, fail-fast)
//   - Concurrency: background fan-out such as flushing the shards of a Sharded cache
//   - IO: token bucket bounding device throughput (blockstore.ThrottledDevice)
//
// # Memory Management
//
// A cache reserves capacity × blockSize bytes up front and releases them on
// Close. AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded if
// the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//	c, err := blockcache.New(4096, 1024, blockcache.WithResourceController(rc))
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 << 20, // 100MB/s
//	})
//	dev := blockstore.NewThrottledDevice(inner, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
