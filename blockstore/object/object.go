package object

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/blockcache/blockstore"
	"github.com/hupe1980/blockcache/codec"
	"github.com/hupe1980/blockcache/internal/conv"
)

// DefaultBlockSize is used when Options.BlockSize is zero.
const DefaultBlockSize = 4096

// ErrMisaligned is returned for transfers that are not exactly one
// block at a block-aligned offset.
var ErrMisaligned = errors.New("object: transfer is not block aligned")

// Client stores opaque objects by key.
//
// Get must return an error satisfying errors.Is(err, blockstore.ErrNotFound)
// for missing keys. List returns every key starting with prefix.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// Options configures a Device.
type Options struct {
	// BlockSize is the size of every block object. Transfers must match it.
	BlockSize int
	// Compression applied to newly written blocks. Existing objects are
	// decoded with whatever compression they were written with.
	Compression codec.Compression
}

// Device implements blockstore.Device with one object per block.
//
// Block n of device name is stored under "name/%016x". Blocks that were
// never written read as zeros without a round trip; a bitmap of present
// blocks is seeded from List at Open.
type Device struct {
	client Client
	name   string
	opts   Options

	mu      sync.RWMutex
	present *roaring64.Bitmap

	closed atomic.Bool
}

// Open lists the blocks already stored for name and returns a Device over them.
func Open(ctx context.Context, client Client, name string, optFns ...func(o *Options)) (*Device, error) {
	opts := Options{BlockSize: DefaultBlockSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockSize <= 0 {
		return nil, fmt.Errorf("object: block size must be positive, got %d", opts.BlockSize)
	}
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("object: invalid device name %q", name)
	}

	d := &Device{
		client:  client,
		name:    name,
		opts:    opts,
		present: roaring64.New(),
	}

	keys, err := client.List(ctx, d.name+"/")
	if err != nil {
		return nil, fmt.Errorf("object: list %s: %w", name, err)
	}
	for _, key := range keys {
		if n, ok := d.parseKey(key); ok {
			d.present.Add(n)
		}
	}
	return d, nil
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Blocks returns the number of blocks stored remotely.
func (d *Device) Blocks() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.present.GetCardinality()
}

// ReadBlock implements blockstore.Device.
func (d *Device) ReadBlock(ctx context.Context, p []byte, off int64) error {
	n, err := d.check(ctx, p, off)
	if err != nil {
		return err
	}

	d.mu.RLock()
	ok := d.present.Contains(n)
	d.mu.RUnlock()
	if !ok {
		clear(p)
		return nil
	}

	payload, err := d.client.Get(ctx, d.key(n))
	if err != nil {
		if errors.Is(err, blockstore.ErrNotFound) {
			clear(p)
			return nil
		}
		return err
	}
	if err := codec.Decode(p, payload); err != nil {
		return fmt.Errorf("object: block %d: %w", n, err)
	}
	return nil
}

// WriteBlock implements blockstore.Device.
func (d *Device) WriteBlock(ctx context.Context, p []byte, off int64) error {
	n, err := d.check(ctx, p, off)
	if err != nil {
		return err
	}

	payload, err := codec.Encode(d.opts.Compression, p)
	if err != nil {
		return err
	}
	if err := d.client.Put(ctx, d.key(n), payload); err != nil {
		return err
	}

	d.mu.Lock()
	d.present.Add(n)
	d.mu.Unlock()
	return nil
}

// Size implements blockstore.Device. It is the end of the highest stored block.
func (d *Device) Size(_ context.Context) (int64, error) {
	if d.closed.Load() {
		return 0, blockstore.ErrClosed
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.present.IsEmpty() {
		return 0, nil
	}
	blocks, err := conv.Uint64ToInt64(d.present.Maximum() + 1)
	if err != nil {
		return 0, err
	}
	return blocks * int64(d.opts.BlockSize), nil
}

// Sync implements blockstore.Device. Every Put is durable once it returns.
func (d *Device) Sync(_ context.Context) error {
	if d.closed.Load() {
		return blockstore.ErrClosed
	}
	return nil
}

// Close implements blockstore.Device.
func (d *Device) Close() error {
	d.closed.Store(true)
	return nil
}

func (d *Device) check(ctx context.Context, p []byte, off int64) (uint64, error) {
	if d.closed.Load() {
		return 0, blockstore.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: %d", blockstore.ErrOutOfRange, off)
	}
	bs := int64(d.opts.BlockSize)
	if int64(len(p)) != bs || off%bs != 0 {
		return 0, fmt.Errorf("%w: %d bytes at %d, block size %d", ErrMisaligned, len(p), off, bs)
	}
	return uint64(off / bs), nil
}

func (d *Device) key(n uint64) string {
	return fmt.Sprintf("%s/%016x", d.name, n)
}

func (d *Device) parseKey(key string) (uint64, bool) {
	suffix, ok := strings.CutPrefix(key, d.name+"/")
	if !ok || len(suffix) != 16 {
		return 0, false
	}
	n, err := strconv.ParseUint(suffix, 16, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
