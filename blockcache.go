package blockcache

import (
	"context"
	"math"
	"time"

	"github.com/hupe1980/blockcache/blockstore"
	"github.com/hupe1980/blockcache/internal/cache"
)

const (
	// DefaultBlockSize is the block size used by the benchmark tool and
	// recommended for file-backed devices.
	DefaultBlockSize = 4096
	// DefaultCapacity is a small default number of resident blocks.
	DefaultCapacity = 16
)

type (
	key   = cache.Key[blockstore.Device]
	block = cache.Block[blockstore.Device]
)

// Cache is a fixed-capacity, write-back block cache with FIFO eviction.
//
// A Cache is not safe for concurrent use; see Sharded for a concurrent
// variant. Blocks are keyed by device and block number, so one Cache can
// serve several devices at once.
type Cache struct {
	pool     *cache.Pool[blockstore.Device]
	opts     options
	reserved int64
	closed   bool
	stats    Stats
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits           uint64
	Misses         uint64
	Evictions      uint64
	DirtyEvictions uint64
	WriteBacks     uint64
	Resident       int
	Dirty          int
}

// New creates a cache of capacity blocks of blockSize bytes each.
// All block buffers are allocated up front.
func New(blockSize, capacity int, optFns ...Option) (*Cache, error) {
	if blockSize <= 0 {
		return nil, invalidArgument("block size must be positive, got %d", blockSize)
	}
	if capacity <= 0 {
		return nil, invalidArgument("capacity must be positive, got %d", capacity)
	}
	opts := applyOptions(optFns)
	opts.logger = opts.logger.WithBlockSize(blockSize)

	reserved := int64(blockSize) * int64(capacity)
	if err := opts.resources.AcquireMemory(reserved); err != nil {
		return nil, err
	}

	pool, err := cache.NewPool[blockstore.Device](capacity, blockSize)
	if err != nil {
		opts.resources.ReleaseMemory(reserved)
		return nil, invalidArgument("%v", err)
	}

	return &Cache{
		pool:     pool,
		opts:     opts,
		reserved: reserved,
	}, nil
}

// BlockSize returns the size of every block in bytes.
func (c *Cache) BlockSize() int { return c.pool.BlockSize() }

// Capacity returns the maximum number of resident blocks.
func (c *Cache) Capacity() int { return c.pool.Cap() }

// Len returns the number of resident blocks.
func (c *Cache) Len() int { return c.pool.Len() }

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	s := c.stats
	s.Resident = c.pool.Len()
	_ = c.pool.Each(func(b *block) error {
		if b.Dirty {
			s.Dirty++
		}
		return nil
	})
	return s
}

// ReadRange copies len(p) bytes starting at off on dev into p, loading
// blocks as needed. Regions never written read as zeros; reaching the end
// of the device is not an error.
//
// On failure ReadRange returns the number of bytes copied before the
// failing block together with an error matching ErrStorageRead (load) or
// ErrStorageWrite (eviction write-back).
func (c *Cache) ReadRange(ctx context.Context, dev blockstore.Device, off int64, p []byte) (int, error) {
	if err := c.check(ctx, dev, off, len(p)); err != nil {
		return 0, err
	}

	n := 0
	err := forEachSegment(off, len(p), c.pool.BlockSize(), func(s segment) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := c.resolve(ctx, dev, s.block)
		if err != nil {
			return err
		}
		n += copy(p[s.pos:s.pos+s.n], b.Data[s.within:])
		return nil
	})
	return n, err
}

// WriteRange copies p into the cache at off on dev and marks every touched
// block dirty. Nothing reaches the device until the block is evicted or
// flushed. Partially covered blocks are loaded first.
//
// On failure the segments before the failing block stay written.
func (c *Cache) WriteRange(ctx context.Context, dev blockstore.Device, off int64, p []byte) (int, error) {
	if err := c.check(ctx, dev, off, len(p)); err != nil {
		return 0, err
	}

	n := 0
	err := forEachSegment(off, len(p), c.pool.BlockSize(), func(s segment) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := c.resolve(ctx, dev, s.block)
		if err != nil {
			return err
		}
		n += copy(b.Data[s.within:s.within+s.n], p[s.pos:])
		b.Dirty = true
		return nil
	})
	return n, err
}

// FlushAll writes every dirty block of dev back, oldest first, and keeps
// the blocks resident. It stops at the first failure; the failing block
// stays dirty.
func (c *Cache) FlushAll(ctx context.Context, dev blockstore.Device) error {
	if c.closed {
		return ErrClosed
	}
	if dev == nil {
		return invalidArgument("nil device")
	}
	return c.flush(ctx, func(b *block) bool { return b.Key.Handle == dev })
}

// Drop flushes dev and then removes all of its blocks from the cache.
// If the flush fails nothing is removed.
func (c *Cache) Drop(ctx context.Context, dev blockstore.Device) error {
	if err := c.FlushAll(ctx, dev); err != nil {
		return err
	}
	c.pool.RemoveFunc(func(b *block) bool { return b.Key.Handle == dev })
	return nil
}

func (c *Cache) check(ctx context.Context, dev blockstore.Device, off int64, length int) error {
	if c.closed {
		return ErrClosed
	}
	if dev == nil {
		return invalidArgument("nil device")
	}
	if off < 0 {
		return invalidArgument("negative offset %d", off)
	}
	if off > math.MaxInt64-int64(length) {
		return invalidArgument("range at %d of %d bytes overflows", off, length)
	}
	return ctx.Err()
}

// resolve returns the resident block number of dev, loading it on a miss.
func (c *Cache) resolve(ctx context.Context, dev blockstore.Device, number int64) (*block, error) {
	k := key{Handle: dev, Number: number}
	if b, ok := c.pool.Lookup(k); ok {
		c.stats.Hits++
		c.opts.metricsCollector.RecordHit()
		return b, nil
	}

	c.stats.Misses++
	if c.pool.Full() {
		if err := c.evict(ctx); err != nil {
			return nil, err
		}
	}

	b := c.pool.Reserve()
	off := number * int64(c.pool.BlockSize())
	start := time.Now()
	err := dev.ReadBlock(ctx, b.Data, off)
	c.opts.metricsCollector.RecordMiss(time.Since(start), err)
	if err != nil {
		c.pool.Release(b)
		err = &StorageError{Op: OpRead, Block: number, Offset: off, Err: err}
		c.opts.logger.LogLoad(ctx, number, err)
		return nil, err
	}

	c.pool.Commit(b, k)
	c.opts.logger.LogLoad(ctx, number, nil)
	return b, nil
}

// evict removes the oldest block, writing it back first if it is dirty.
// The block is removed even if the write-back fails.
func (c *Cache) evict(ctx context.Context) error {
	b, ok := c.pool.Oldest()
	if !ok {
		return nil
	}
	number, dirty := b.Key.Number, b.Dirty

	var err error
	if dirty {
		// A cancellation here would silently turn into data loss.
		err = c.writeBack(context.WithoutCancel(ctx), b)
	}
	c.pool.RemoveOldest()

	c.stats.Evictions++
	if dirty {
		c.stats.DirtyEvictions++
	}
	c.opts.metricsCollector.RecordEviction(dirty, err)
	c.opts.logger.LogEviction(ctx, number, dirty, err)
	return err
}

func (c *Cache) writeBack(ctx context.Context, b *block) error {
	off := b.Key.Number * int64(c.pool.BlockSize())
	start := time.Now()
	err := b.Key.Handle.WriteBlock(ctx, b.Data, off)
	c.opts.metricsCollector.RecordWriteBack(time.Since(start), err)
	if err != nil {
		return &StorageError{Op: OpWrite, Block: b.Key.Number, Offset: off, Err: err}
	}
	b.Dirty = false
	c.stats.WriteBacks++
	return nil
}

func (c *Cache) flush(ctx context.Context, match func(b *block) bool) error {
	start := time.Now()
	written := 0
	err := c.pool.Each(func(b *block) error {
		if !b.Dirty || !match(b) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.writeBack(ctx, b); err != nil {
			return err
		}
		written++
		return nil
	})
	c.opts.metricsCollector.RecordFlush(written, time.Since(start), err)
	c.opts.logger.LogFlush(ctx, written, err)
	return err
}
