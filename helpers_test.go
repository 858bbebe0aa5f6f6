package blockcache

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/hupe1980/blockcache/blockstore"
)

var (
	errInjectedRead  = errors.New("injected read failure")
	errInjectedWrite = errors.New("injected write failure")
)

// faultyDevice is a MemoryDevice whose reads and writes can be made to fail.
// failBlock restricts failures to one block number; -1 fails every block.
type faultyDevice struct {
	*blockstore.MemoryDevice
	blockSize  int64
	failReads  atomic.Bool
	failWrites atomic.Bool
	failBlock  atomic.Int64
}

func newFaultyDevice(blockSize int) *faultyDevice {
	d := &faultyDevice{
		MemoryDevice: blockstore.NewMemoryDevice(nil),
		blockSize:    int64(blockSize),
	}
	d.failBlock.Store(-1)
	return d
}

func (d *faultyDevice) hit(off int64) bool {
	fb := d.failBlock.Load()
	return fb < 0 || fb == off/d.blockSize
}

func (d *faultyDevice) ReadBlock(ctx context.Context, p []byte, off int64) error {
	if d.failReads.Load() && d.hit(off) {
		return errInjectedRead
	}
	return d.MemoryDevice.ReadBlock(ctx, p, off)
}

func (d *faultyDevice) WriteBlock(ctx context.Context, p []byte, off int64) error {
	if d.failWrites.Load() && d.hit(off) {
		return errInjectedWrite
	}
	return d.MemoryDevice.WriteBlock(ctx, p, off)
}
