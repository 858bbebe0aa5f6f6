package main

import (
	"context"

	"github.com/hupe1980/blockcache/blockstore"
)

// direct performs every range operation straight against the device with a
// read-modify-write of each touched block. It is the uncached baseline.
type direct struct {
	blockSize int
	buf       []byte
}

func newDirect(blockSize int) *direct {
	return &direct{blockSize: blockSize, buf: make([]byte, blockSize)}
}

func (d *direct) ReadRange(ctx context.Context, dev blockstore.Device, off int64, p []byte) (int, error) {
	n := 0
	for n < len(p) {
		o := off + int64(n)
		start := o - o%int64(d.blockSize)
		if err := dev.ReadBlock(ctx, d.buf, start); err != nil {
			return n, err
		}
		n += copy(p[n:], d.buf[o-start:])
	}
	return n, nil
}

func (d *direct) WriteRange(ctx context.Context, dev blockstore.Device, off int64, p []byte) (int, error) {
	n := 0
	for n < len(p) {
		o := off + int64(n)
		start := o - o%int64(d.blockSize)
		if err := dev.ReadBlock(ctx, d.buf, start); err != nil {
			return n, err
		}
		m := copy(d.buf[o-start:], p[n:])
		if err := dev.WriteBlock(ctx, d.buf, start); err != nil {
			return n, err
		}
		n += m
	}
	return n, nil
}

func (d *direct) FlushAll(context.Context, blockstore.Device) error { return nil }

func (d *direct) Drop(context.Context, blockstore.Device) error { return nil }
