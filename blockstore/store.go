package blockstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrNotFound is returned when an object or file does not exist.
	//
	// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
	// The default maps to `os.ErrNotExist`.
	ErrNotFound = os.ErrNotExist

	// ErrClosed is returned by every Device method after Close.
	ErrClosed = errors.New("blockstore: device closed")

	// ErrOutOfRange is returned for negative offsets and for writes past
	// the end of a fixed-size device.
	ErrOutOfRange = errors.New("blockstore: offset out of range")
)

// Device is a block-addressed backing store.
//
// Callers transfer whole blocks: p is one block and off is a multiple of
// len(p). Implementations must be safe for concurrent use and must be
// comparable (pointer receivers), because caches key resident blocks by
// device.
type Device interface {
	// ReadBlock fills p with the bytes at off. Bytes past the end of the
	// stored data read as zero; reaching the end is not an error.
	ReadBlock(ctx context.Context, p []byte, off int64) error
	// WriteBlock stores p at off.
	WriteBlock(ctx context.Context, p []byte, off int64) error
	// Size returns the number of bytes the device currently holds.
	Size(ctx context.Context) (int64, error)
	// Sync makes previous writes durable.
	Sync(ctx context.Context) error
	// Close releases the device.
	Close() error
}

// ReadFullAt reads len(p) bytes from r at off and zero-fills whatever lies
// past the end of r.
func ReadFullAt(r io.ReaderAt, p []byte, off int64) error {
	if off < 0 {
		return fmt.Errorf("%w: %d", ErrOutOfRange, off)
	}
	n, err := r.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	clear(p[n:])
	return nil
}
