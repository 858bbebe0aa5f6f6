package blockstore

import (
	"context"

	"github.com/hupe1980/blockcache/resource"
)

// ThrottledDevice bounds the bandwidth of another Device with the IO token
// bucket of a resource.Controller. Every transferred byte costs one token.
type ThrottledDevice struct {
	inner Device
	rc    *resource.Controller
}

// NewThrottledDevice wraps inner. A nil controller disables throttling.
func NewThrottledDevice(inner Device, rc *resource.Controller) *ThrottledDevice {
	return &ThrottledDevice{inner: inner, rc: rc}
}

// Unwrap returns the wrapped device.
func (d *ThrottledDevice) Unwrap() Device { return d.inner }

// ReadBlock implements Device.
func (d *ThrottledDevice) ReadBlock(ctx context.Context, p []byte, off int64) error {
	if err := d.rc.AcquireIO(ctx, len(p)); err != nil {
		return err
	}
	return d.inner.ReadBlock(ctx, p, off)
}

// WriteBlock implements Device.
func (d *ThrottledDevice) WriteBlock(ctx context.Context, p []byte, off int64) error {
	if err := d.rc.AcquireIO(ctx, len(p)); err != nil {
		return err
	}
	return d.inner.WriteBlock(ctx, p, off)
}

// Size implements Device.
func (d *ThrottledDevice) Size(ctx context.Context) (int64, error) {
	return d.inner.Size(ctx)
}

// Sync implements Device.
func (d *ThrottledDevice) Sync(ctx context.Context) error {
	return d.inner.Sync(ctx)
}

// Close implements Device.
func (d *ThrottledDevice) Close() error {
	return d.inner.Close()
}
