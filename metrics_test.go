package blockcache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	m := &BasicMetricsCollector{}
	boom := errors.New("boom")

	m.RecordHit()
	m.RecordHit()
	m.RecordHit()
	m.RecordMiss(10*time.Nanosecond, nil)
	m.RecordEviction(true, boom)
	m.RecordEviction(false, nil)
	m.RecordWriteBack(4*time.Nanosecond, nil)
	m.RecordWriteBack(8*time.Nanosecond, boom)
	m.RecordFlush(3, time.Millisecond, nil)

	stats := m.GetStats()
	assert.Equal(t, int64(3), stats.HitCount)
	assert.Equal(t, int64(1), stats.MissCount)
	assert.Equal(t, int64(10), stats.MissAvgNanos)
	assert.InDelta(t, 0.75, stats.HitRatio, 1e-9)
	assert.Equal(t, int64(2), stats.EvictionCount)
	assert.Equal(t, int64(1), stats.DirtyEvictions)
	assert.Equal(t, int64(1), stats.EvictionErrors)
	assert.Equal(t, int64(2), stats.WriteBackCount)
	assert.Equal(t, int64(1), stats.WriteBackErrors)
	assert.Equal(t, int64(6), stats.WriteBackAvgNanos)
	assert.Equal(t, int64(3), stats.FlushBlocks)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	stats := (&BasicMetricsCollector{}).GetStats()
	assert.Zero(t, stats.HitRatio)
	assert.Zero(t, stats.MissAvgNanos)
}

func TestNoopMetricsCollector(t *testing.T) {
	var m MetricsCollector = NoopMetricsCollector{}
	assert.NotPanics(t, func() {
		m.RecordHit()
		m.RecordMiss(0, nil)
		m.RecordEviction(true, nil)
		m.RecordWriteBack(0, nil)
		m.RecordFlush(0, 0, nil)
	})
}
