package blockstore

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/hupe1980/blockcache/internal/fs"
)

// FileDevice implements Device on a regular file.
type FileDevice struct {
	f      fs.File
	path   string
	closed atomic.Bool
}

// OpenFile opens or creates the file at path for reading and writing.
func OpenFile(path string) (*FileDevice, error) {
	return openFileFS(fs.Default, path)
}

func openFileFS(fsys fs.FileSystem, path string) (*FileDevice, error) {
	f, err := fsys.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("blockstore: open %s: %w", path, err)
	}
	return &FileDevice{f: f, path: path}, nil
}

// Name returns the path of the underlying file.
func (d *FileDevice) Name() string {
	return d.path
}

// ReadBlock implements Device.
func (d *FileDevice) ReadBlock(ctx context.Context, p []byte, off int64) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ReadFullAt(d.f, p, off)
}

// WriteBlock implements Device.
func (d *FileDevice) WriteBlock(ctx context.Context, p []byte, off int64) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if off < 0 {
		return fmt.Errorf("%w: %d", ErrOutOfRange, off)
	}
	_, err := d.f.WriteAt(p, off)
	return err
}

// Size implements Device.
func (d *FileDevice) Size(_ context.Context) (int64, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	fi, err := d.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Sync implements Device. On Linux it issues fdatasync.
func (d *FileDevice) Sync(ctx context.Context) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.f.Sync()
}

// Close implements Device. It is idempotent.
func (d *FileDevice) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	return d.f.Close()
}
