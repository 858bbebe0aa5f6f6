package blockstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/blockcache/internal/mmap"
)

// MmapDevice implements Device on a fixed-size file mapped read-write.
// Writes beyond the mapped size fail with ErrOutOfRange.
type MmapDevice struct {
	// mu is held shared while the mapping is touched and exclusively
	// while it is unmapped.
	mu     sync.RWMutex
	m      *mmap.Mapping
	closed bool
}

// OpenMmap maps the file at path, growing it to size bytes if needed.
func OpenMmap(path string, size int64) (*MmapDevice, error) {
	m, err := mmap.OpenFile(path, size)
	if err != nil {
		return nil, fmt.Errorf("blockstore: mmap %s: %w", path, err)
	}
	// Block caches hit the device in no particular order.
	if err := m.Advise(mmap.AccessRandom); err != nil {
		_ = m.Close()
		return nil, err
	}
	return &MmapDevice{m: m}, nil
}

// ReadBlock implements Device.
func (d *MmapDevice) ReadBlock(ctx context.Context, p []byte, off int64) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := d.bytes(ctx, off)
	if err != nil {
		return err
	}
	n := 0
	if off < int64(len(data)) {
		n = copy(p, data[off:])
	}
	clear(p[n:])
	return nil
}

// WriteBlock implements Device.
func (d *MmapDevice) WriteBlock(ctx context.Context, p []byte, off int64) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := d.bytes(ctx, off)
	if err != nil {
		return err
	}
	if off+int64(len(p)) > int64(len(data)) {
		return fmt.Errorf("%w: [%d, %d) exceeds device size %d", ErrOutOfRange, off, off+int64(len(p)), len(data))
	}
	copy(data[off:], p)
	return nil
}

// Size implements Device.
func (d *MmapDevice) Size(_ context.Context) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return 0, ErrClosed
	}
	return int64(d.m.Size()), nil
}

// Sync implements Device.
func (d *MmapDevice) Sync(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.m.Flush(); err != nil {
		if errors.Is(err, mmap.ErrClosed) {
			return ErrClosed
		}
		return err
	}
	return nil
}

// Close implements Device. It does not flush and waits for in-flight
// transfers to finish before unmapping. It is idempotent.
func (d *MmapDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.m.Close()
}

func (d *MmapDevice) bytes(ctx context.Context, off int64) ([]byte, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if off < 0 {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, off)
	}
	return d.m.Bytes(), nil
}
