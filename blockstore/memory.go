package blockstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MemoryDevice is an in-memory Device for tests and benchmarks.
// It grows on write and counts every call that reaches it.
type MemoryDevice struct {
	mu     sync.RWMutex
	data   []byte
	closed bool

	reads  atomic.Int64
	writes atomic.Int64
	syncs  atomic.Int64
}

// NewMemoryDevice creates a device holding a copy of initial.
func NewMemoryDevice(initial []byte) *MemoryDevice {
	return &MemoryDevice{data: append([]byte(nil), initial...)}
}

// ReadBlock implements Device.
func (m *MemoryDevice) ReadBlock(ctx context.Context, p []byte, off int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if off < 0 {
		return fmt.Errorf("%w: %d", ErrOutOfRange, off)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	m.reads.Add(1)

	n := 0
	if off < int64(len(m.data)) {
		n = copy(p, m.data[off:])
	}
	clear(p[n:])
	return nil
}

// WriteBlock implements Device.
func (m *MemoryDevice) WriteBlock(ctx context.Context, p []byte, off int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if off < 0 {
		return fmt.Errorf("%w: %d", ErrOutOfRange, off)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.writes.Add(1)

	if end := off + int64(len(p)); end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[off:], p)
	return nil
}

// Size implements Device.
func (m *MemoryDevice) Size(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrClosed
	}
	return int64(len(m.data)), nil
}

// Sync implements Device.
func (m *MemoryDevice) Sync(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	m.syncs.Add(1)
	return nil
}

// Close implements Device. The contents stay readable through Bytes.
func (m *MemoryDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Bytes returns a copy of the device contents.
func (m *MemoryDevice) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.data...)
}

// Reads returns the number of ReadBlock calls served.
func (m *MemoryDevice) Reads() int64 { return m.reads.Load() }

// Writes returns the number of WriteBlock calls served.
func (m *MemoryDevice) Writes() int64 { return m.writes.Load() }

// Syncs returns the number of Sync calls served.
func (m *MemoryDevice) Syncs() int64 { return m.syncs.Load() }
