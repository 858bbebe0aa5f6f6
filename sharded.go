package blockcache

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/hupe1980/blockcache/blockstore"
	"golang.org/x/sync/errgroup"
)

// Sharded is a Cache partitioned by block number for concurrent use.
//
// Block b belongs to shard b % shards. Each shard is an independent Cache
// guarded by its own mutex, so FIFO order and capacity are per shard.
// Range operations lock one shard at a time; a range spanning several
// shards is not atomic with respect to concurrent writers.
type Sharded struct {
	shards    []*shard
	blockSize int
	opts      options
}

type shard struct {
	mu sync.Mutex
	c  *Cache
}

// NewSharded creates shards caches of capacityPerShard blocks each.
func NewSharded(shards, blockSize, capacityPerShard int, optFns ...Option) (*Sharded, error) {
	if shards <= 0 {
		return nil, invalidArgument("shard count must be positive, got %d", shards)
	}
	opts := applyOptions(optFns)

	s := &Sharded{
		shards:    make([]*shard, 0, shards),
		blockSize: blockSize,
		opts:      opts,
	}
	for i := range shards {
		c, err := New(blockSize, capacityPerShard,
			WithMetricsCollector(opts.metricsCollector),
			WithLogger(opts.logger.WithShard(i)),
			WithResourceController(opts.resources),
		)
		if err != nil {
			for _, sh := range s.shards {
				_ = sh.c.Close(context.Background())
			}
			return nil, err
		}
		s.shards = append(s.shards, &shard{c: c})
	}
	return s, nil
}

// BlockSize returns the size of every block in bytes.
func (s *Sharded) BlockSize() int { return s.blockSize }

// Shards returns the number of shards.
func (s *Sharded) Shards() int { return len(s.shards) }

// Capacity returns the total number of resident blocks across all shards.
func (s *Sharded) Capacity() int {
	return len(s.shards) * s.shards[0].c.Capacity()
}

// Len returns the number of resident blocks across all shards.
func (s *Sharded) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += sh.c.Len()
		sh.mu.Unlock()
	}
	return n
}

// Stats sums the counters of all shards.
func (s *Sharded) Stats() Stats {
	var total Stats
	for _, sh := range s.shards {
		sh.mu.Lock()
		st := sh.c.Stats()
		sh.mu.Unlock()

		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Evictions += st.Evictions
		total.DirtyEvictions += st.DirtyEvictions
		total.WriteBacks += st.WriteBacks
		total.Resident += st.Resident
		total.Dirty += st.Dirty
	}
	return total
}

// ReadRange is Cache.ReadRange, safe for concurrent use.
func (s *Sharded) ReadRange(ctx context.Context, dev blockstore.Device, off int64, p []byte) (int, error) {
	return s.do(ctx, dev, off, p, (*Cache).ReadRange)
}

// WriteRange is Cache.WriteRange, safe for concurrent use.
func (s *Sharded) WriteRange(ctx context.Context, dev blockstore.Device, off int64, p []byte) (int, error) {
	return s.do(ctx, dev, off, p, (*Cache).WriteRange)
}

// FlushAll flushes dev on every shard concurrently. The first failure
// cancels the shards still flushing.
func (s *Sharded) FlushAll(ctx context.Context, dev blockstore.Device) error {
	return s.fanOut(ctx, func(ctx context.Context, c *Cache) error {
		return c.FlushAll(ctx, dev)
	})
}

// Drop flushes dev and removes its blocks on every shard. Shards whose
// flush failed keep their blocks.
func (s *Sharded) Drop(ctx context.Context, dev blockstore.Device) error {
	return s.fanOut(ctx, func(ctx context.Context, c *Cache) error {
		return c.Drop(ctx, dev)
	})
}

// Close closes every shard, even when some of them fail.
func (s *Sharded) Close(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	errs := make([]error, len(s.shards))

	var g errgroup.Group
	for i, sh := range s.shards {
		g.Go(func() error {
			if err := s.opts.resources.AcquireBackground(ctx); err != nil {
				errs[i] = err
				return nil
			}
			defer s.opts.resources.ReleaseBackground()

			sh.mu.Lock()
			defer sh.mu.Unlock()
			errs[i] = sh.c.Close(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

type rangeFunc func(c *Cache, ctx context.Context, dev blockstore.Device, off int64, p []byte) (int, error)

func (s *Sharded) do(ctx context.Context, dev blockstore.Device, off int64, p []byte, fn rangeFunc) (int, error) {
	if dev == nil {
		return 0, invalidArgument("nil device")
	}
	if off < 0 {
		return 0, invalidArgument("negative offset %d", off)
	}
	if off > math.MaxInt64-int64(len(p)) {
		return 0, invalidArgument("range at %d of %d bytes overflows", off, len(p))
	}

	n := 0
	err := forEachSegment(off, len(p), s.blockSize, func(seg segment) error {
		sh := s.shards[seg.block%int64(len(s.shards))]
		segOff := seg.block*int64(s.blockSize) + int64(seg.within)

		sh.mu.Lock()
		m, err := fn(sh.c, ctx, dev, segOff, p[seg.pos:seg.pos+seg.n])
		sh.mu.Unlock()

		n += m
		return err
	})
	return n, err
}

func (s *Sharded) fanOut(ctx context.Context, fn func(ctx context.Context, c *Cache) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, sh := range s.shards {
		g.Go(func() error {
			if err := s.opts.resources.AcquireBackground(ctx); err != nil {
				return err
			}
			defer s.opts.resources.ReleaseBackground()

			sh.mu.Lock()
			defer sh.mu.Unlock()
			return fn(ctx, sh.c)
		})
	}
	return g.Wait()
}
