package blockcache

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    hits   prometheus.Counter
//	    misses prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordHit() {
//	    p.hits.Inc()
//	}
//
// Calls are made synchronously from cache operations; implementations must
// be cheap and, when shared by a Sharded cache, safe for concurrent use.
type MetricsCollector interface {
	// RecordHit is called when a block is found resident.
	RecordHit()

	// RecordMiss is called after each block load.
	// duration is the device read time, err is nil if successful.
	RecordMiss(duration time.Duration, err error)

	// RecordEviction is called after the oldest block was evicted.
	// err is non-nil if the write-back of a dirty block failed.
	RecordEviction(dirty bool, err error)

	// RecordWriteBack is called after each dirty block write.
	RecordWriteBack(duration time.Duration, err error)

	// RecordFlush is called after each FlushAll.
	// blocks is the number of blocks written.
	RecordFlush(blocks int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordHit()                            {}
func (NoopMetricsCollector) RecordMiss(time.Duration, error)       {}
func (NoopMetricsCollector) RecordEviction(bool, error)            {}
func (NoopMetricsCollector) RecordWriteBack(time.Duration, error)  {}
func (NoopMetricsCollector) RecordFlush(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	HitCount            atomic.Int64
	MissCount           atomic.Int64
	MissErrors          atomic.Int64
	MissTotalNanos      atomic.Int64
	EvictionCount       atomic.Int64
	DirtyEvictionCount  atomic.Int64
	EvictionErrors      atomic.Int64
	WriteBackCount      atomic.Int64
	WriteBackErrors     atomic.Int64
	WriteBackTotalNanos atomic.Int64
	FlushCount          atomic.Int64
	FlushBlocks         atomic.Int64
	FlushErrors         atomic.Int64
}

// RecordHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordHit() {
	b.HitCount.Add(1)
}

// RecordMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMiss(duration time.Duration, err error) {
	b.MissCount.Add(1)
	b.MissTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MissErrors.Add(1)
	}
}

// RecordEviction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEviction(dirty bool, err error) {
	b.EvictionCount.Add(1)
	if dirty {
		b.DirtyEvictionCount.Add(1)
	}
	if err != nil {
		b.EvictionErrors.Add(1)
	}
}

// RecordWriteBack implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWriteBack(duration time.Duration, err error) {
	b.WriteBackCount.Add(1)
	b.WriteBackTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteBackErrors.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(blocks int, _ time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushBlocks.Add(int64(blocks))
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	hits, misses := b.HitCount.Load(), b.MissCount.Load()
	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	return BasicMetricsStats{
		HitCount:          hits,
		MissCount:         misses,
		MissErrors:        b.MissErrors.Load(),
		MissAvgNanos:      avg(b.MissTotalNanos.Load(), misses),
		HitRatio:          ratio,
		EvictionCount:     b.EvictionCount.Load(),
		DirtyEvictions:    b.DirtyEvictionCount.Load(),
		EvictionErrors:    b.EvictionErrors.Load(),
		WriteBackCount:    b.WriteBackCount.Load(),
		WriteBackErrors:   b.WriteBackErrors.Load(),
		WriteBackAvgNanos: avg(b.WriteBackTotalNanos.Load(), b.WriteBackCount.Load()),
		FlushCount:        b.FlushCount.Load(),
		FlushBlocks:       b.FlushBlocks.Load(),
		FlushErrors:       b.FlushErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	HitCount          int64
	MissCount         int64
	MissErrors        int64
	MissAvgNanos      int64
	HitRatio          float64
	EvictionCount     int64
	DirtyEvictions    int64
	EvictionErrors    int64
	WriteBackCount    int64
	WriteBackErrors   int64
	WriteBackAvgNanos int64
	FlushCount        int64
	FlushBlocks       int64
	FlushErrors       int64
}
