package blockcache

import (
	"context"
	"io"

	"github.com/hupe1980/blockcache/blockstore"
)

// RangeCache is the cache interface a File works against.
// Both *Cache and *Sharded implement it.
type RangeCache interface {
	ReadRange(ctx context.Context, dev blockstore.Device, off int64, p []byte) (int, error)
	WriteRange(ctx context.Context, dev blockstore.Device, off int64, p []byte) (int, error)
	FlushAll(ctx context.Context, dev blockstore.Device) error
	Drop(ctx context.Context, dev blockstore.Device) error
}

var (
	_ RangeCache = (*Cache)(nil)
	_ RangeCache = (*Sharded)(nil)
)

// File is a cursor over a device whose I/O goes through a cache.
//
// Read never returns io.EOF: bytes past the end of the device read as
// zeros, so a Read always transfers len(p) bytes unless the device fails.
// A File is not safe for concurrent use.
type File struct {
	ctx    context.Context
	cache  RangeCache
	dev    blockstore.Device
	pos    int64
	end    int64 // highest byte written through this file
	closed bool
}

var (
	_ io.ReadWriteSeeker = (*File)(nil)
	_ io.ReaderAt        = (*File)(nil)
	_ io.WriterAt        = (*File)(nil)
	_ io.Closer          = (*File)(nil)
)

// OpenFile returns a File positioned at offset 0 of dev. ctx bounds every
// operation made through the File and must outlive it.
func OpenFile(ctx context.Context, c RangeCache, dev blockstore.Device) *File {
	return &File{ctx: ctx, cache: c, dev: dev}
}

// Device returns the underlying device.
func (f *File) Device() blockstore.Device { return f.dev }

// Read reads len(p) bytes at the cursor and advances it by the bytes read,
// also when the read fails part way.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	n, err := f.cache.ReadRange(f.ctx, f.dev, f.pos, p)
	f.pos += int64(n)
	return n, err
}

// Write writes p at the cursor and advances it by the bytes written.
func (f *File) Write(p []byte) (int, error) {
	n, err := f.WriteAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

// ReadAt reads len(p) bytes at off without moving the cursor.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	return f.cache.ReadRange(f.ctx, f.dev, off, p)
}

// WriteAt writes p at off without moving the cursor.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	n, err := f.cache.WriteRange(f.ctx, f.dev, off, p)
	if n > 0 {
		f.end = max(f.end, off+int64(n))
	}
	return n, err
}

// Seek sets the cursor. io.SeekEnd is relative to the larger of the device
// size and the highest byte written through this File, so unflushed writes
// count. Seeking before the start fails with ErrInvalidArgument.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, ErrClosed
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = f.pos
	case io.SeekEnd:
		size, err := f.dev.Size(f.ctx)
		if err != nil {
			return 0, err
		}
		base = max(size, f.end)
	default:
		return 0, invalidArgument("invalid whence %d", whence)
	}

	pos := base + offset
	if pos < 0 {
		return 0, invalidArgument("negative position %d", pos)
	}
	f.pos = pos
	return pos, nil
}

// Sync flushes the File's dirty blocks and then syncs the device.
func (f *File) Sync() error {
	if f.closed {
		return ErrClosed
	}
	if err := f.cache.FlushAll(f.ctx, f.dev); err != nil {
		return err
	}
	return f.dev.Sync(f.ctx)
}

// Close flushes and drops the File's blocks from the cache and closes the
// device. If the flush fails the File stays open so Close can be retried.
func (f *File) Close() error {
	if f.closed {
		return ErrClosed
	}
	if err := f.cache.Drop(f.ctx, f.dev); err != nil {
		return err
	}
	f.closed = true
	return f.dev.Close()
}
