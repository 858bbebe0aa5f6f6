// Command blockbench measures a block cache against its backing device.
//
// It writes n random int32 values one at a time through the cache (or
// directly to the device with -direct), reads them back, sorts them and
// reports the time of every phase.
//
//	blockbench -backend file -path /tmp/bench.bin -n 1000000 -capacity 64
//	blockbench -backend s3 -bucket my-bucket -compression zstd
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/blockcache"
	"github.com/hupe1980/blockcache/blockstore"
	"github.com/hupe1980/blockcache/codec"
	"github.com/hupe1980/blockcache/resource"
	"github.com/hupe1980/blockcache/testutil"
)

var (
	backend     = flag.String("backend", "file", "Backing store: file, mmap, memory, object, s3, minio, dynamodb")
	path        = flag.String("path", "blockbench.bin", "File for the file and mmap backends")
	bucket      = flag.String("bucket", "blockbench", "Bucket for s3 and minio")
	prefix      = flag.String("prefix", "blockbench", "Key prefix for s3 and minio")
	table       = flag.String("table", "blockcache-blocks", "DynamoDB table")
	endpoint    = flag.String("endpoint", "localhost:9000", "MinIO endpoint")
	accessKey   = flag.String("access-key", "minioadmin", "MinIO access key")
	secretKey   = flag.String("secret-key", "minioadmin", "MinIO secret key")
	deviceName  = flag.String("device", "bench", "Device name for object backends")
	compression = flag.String("compression", "none", "Block compression for object backends: none, lz4, zstd")

	count     = flag.Int("n", 100_000, "Number of int32 values")
	blockSize = flag.Int("block-size", blockcache.DefaultBlockSize, "Block size in bytes")
	capacity  = flag.Int("capacity", blockcache.DefaultCapacity, "Resident blocks (per shard)")
	shards    = flag.Int("shards", 1, "Cache shards; 1 uses a plain Cache")
	memLimit  = flag.Int64("mem-limit", 0, "Cache memory limit in bytes (0 = unlimited)")
	ioLimit   = flag.Int64("io-limit", 0, "Device bandwidth limit in bytes/s (0 = unlimited)")
	noCache   = flag.Bool("direct", false, "Bypass the cache")
	seed      = flag.Int64("seed", 42, "Random seed")
	verbose   = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Parse()
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	comp, err := codec.ParseCompression(*compression)
	if err != nil {
		return err
	}

	logger := blockcache.NewTextLogger(slog.LevelInfo)
	if *verbose {
		logger = blockcache.NewTextLogger(slog.LevelDebug)
	}

	size := int64(*count) * 4
	dev, err := openDevice(ctx, backendConfig{
		kind:        *backend,
		path:        *path,
		size:        size + int64(*blockSize),
		bucket:      *bucket,
		prefix:      *prefix,
		table:       *table,
		endpoint:    *endpoint,
		accessKey:   *accessKey,
		secretKey:   *secretKey,
		name:        *deviceName,
		blockSize:   *blockSize,
		compression: comp,
	})
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:     *memLimit,
		MaxBackgroundWorkers: int64(max(*shards, 1)),
		IOLimitBytesPerSec:   *ioLimit,
	})
	if *ioLimit > 0 {
		dev = blockstore.NewThrottledDevice(dev, rc)
	}

	metrics := &blockcache.BasicMetricsCollector{}
	opts := []blockcache.Option{
		blockcache.WithLogger(logger),
		blockcache.WithMetricsCollector(metrics),
		blockcache.WithResourceController(rc),
	}

	var (
		rangeCache blockcache.RangeCache
		closeCache = func(context.Context) error { return nil }
	)
	switch {
	case *noCache:
		rangeCache = newDirect(*blockSize)
	case *shards > 1:
		s, err := blockcache.NewSharded(*shards, *blockSize, *capacity, opts...)
		if err != nil {
			return err
		}
		rangeCache, closeCache = s, s.Close
	default:
		c, err := blockcache.New(*blockSize, *capacity, opts...)
		if err != nil {
			return err
		}
		rangeCache, closeCache = c, c.Close
	}

	fmt.Printf("backend=%s values=%s data=%s block=%s capacity=%d shards=%d cached=%t\n",
		*backend, humanize.Comma(int64(*count)), humanize.IBytes(uint64(size)),
		humanize.IBytes(uint64(*blockSize)), *capacity, *shards, !*noCache)

	values := testutil.NewRNG(*seed).Int32s(*count)
	f := blockcache.OpenFile(ctx, rangeCache, dev)

	// Phase 1: one value per write, as an application appending records would.
	start := time.Now()
	for _, v := range values {
		if _, err := f.Write(testutil.EncodeInt32s([]int32{v})); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	report("write", start, size)

	start = time.Now()
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	report("sync", start, size)

	// Phase 2: read everything back in one pass.
	start = time.Now()
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	report("read", start, size)

	start = time.Now()
	got := testutil.DecodeInt32s(buf)
	slices.Sort(got)
	report("sort", start, size)

	slices.Sort(values)
	if !slices.Equal(values, got) {
		return fmt.Errorf("verification failed: data read back differs from data written")
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := closeCache(ctx); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}

	stats := metrics.GetStats()
	fmt.Printf("hits=%s misses=%s hit-ratio=%.3f evictions=%s dirty=%s avg-load=%s avg-writeback=%s\n",
		humanize.Comma(stats.HitCount), humanize.Comma(stats.MissCount), stats.HitRatio,
		humanize.Comma(stats.EvictionCount), humanize.Comma(stats.DirtyEvictions),
		time.Duration(stats.MissAvgNanos), time.Duration(stats.WriteBackAvgNanos))

	if *backend == "file" || *backend == "mmap" {
		_ = os.Remove(*path)
	}
	return nil
}

func report(phase string, start time.Time, bytes int64) {
	elapsed := time.Since(start)
	rate := float64(bytes) / elapsed.Seconds()
	fmt.Printf("%-6s %12s  %s/s\n", phase, elapsed.Round(time.Microsecond), humanize.IBytes(uint64(rate)))
}
